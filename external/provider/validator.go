package provider

import (
	twclient "github.com/twilio/twilio-go/client"
)

type TwilioSignatureValidator struct {
	validator twclient.RequestValidator
}

func NewTwilioSignatureValidator(authToken string) *TwilioSignatureValidator {
	return &TwilioSignatureValidator{validator: twclient.NewRequestValidator(authToken)}
}

func (v *TwilioSignatureValidator) Validate(url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	return v.validator.Validate(url, params, signature)
}
