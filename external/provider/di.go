package provider

import (
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/foxseedlab/callinterview/internal/provider"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (provider.Provider, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewTwilioProvider(TwilioConfig{
			AccountSID: c.TwilioAccountSID,
			AuthToken:  c.TwilioAuthToken,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (provider.SignatureValidator, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewTwilioSignatureValidator(c.TwilioAuthToken), nil
	})
	do.Provide(injector, func(i do.Injector) (instruction.Renderer, error) {
		return NewTwiMLRenderer(), nil
	})
}
