package provider

import (
	"fmt"
	"strconv"

	"github.com/foxseedlab/callinterview/internal/instruction"
	"github.com/twilio/twilio-go/twiml"
)

const twimlContentType = "application/xml"

type TwiMLRenderer struct{}

func NewTwiMLRenderer() *TwiMLRenderer {
	return &TwiMLRenderer{}
}

func (r *TwiMLRenderer) ContentType() string {
	return twimlContentType
}

func (r *TwiMLRenderer) Render(in instruction.Instruction) ([]byte, error) {
	var elements []twiml.Element

	switch {
	case in.Hangup:
		if in.Utterance != "" {
			elements = append(elements, say(in))
		}
		elements = append(elements, &twiml.VoiceHangup{})
	case in.Capture == instruction.CaptureRecord:
		if in.Utterance != "" {
			elements = append(elements, say(in))
		}
		rec := &twiml.VoiceRecord{
			Action:    in.CallbackURL,
			Method:    "POST",
			PlayBeep:  "true",
			MaxLength: positive(in.MaxLengthSeconds),
			Timeout:   positive(in.TimeoutSeconds),
		}
		if in.Transcribe {
			rec.Transcribe = "true"
			rec.TranscribeCallback = in.TranscribeCallback
		}
		elements = append(elements, rec)
	case in.Capture == instruction.CaptureSpeech:
		gather := &twiml.VoiceGather{
			Input:    "speech",
			Action:   in.CallbackURL,
			Method:   "POST",
			Timeout:  positive(in.TimeoutSeconds),
			Language: in.Language,
			OptionalAttributes: map[string]string{
				"actionOnEmptyResult": "true",
			},
		}
		if in.Utterance != "" {
			gather.InnerElements = []twiml.Element{say(in)}
		}
		elements = append(elements, gather)
	default:
		if in.Utterance != "" {
			elements = append(elements, say(in))
		}
	}

	doc, err := twiml.Voice(elements)
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return []byte(doc), nil
}

func say(in instruction.Instruction) *twiml.VoiceSay {
	return &twiml.VoiceSay{
		Message:  in.Utterance,
		Voice:    in.Voice,
		Language: in.Language,
	}
}

func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
