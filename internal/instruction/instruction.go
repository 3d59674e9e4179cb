package instruction

type Capture string

const (
	CaptureNone   Capture = "none"
	CaptureRecord Capture = "record"
	CaptureSpeech Capture = "speech"
)

// Instruction tells the provider what to do next on a live call: say
// something, then either capture an answer and call back, or hang up.
type Instruction struct {
	Utterance          string
	Capture            Capture
	CallbackURL        string
	TimeoutSeconds     int
	MaxLengthSeconds   int
	Language           string
	Voice              string
	Transcribe         bool
	TranscribeCallback string
	Hangup             bool
}

type Renderer interface {
	ContentType() string
	Render(in Instruction) ([]byte, error)
}
