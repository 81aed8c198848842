// Package transport defines the request/response bodies of the voice
// webhook endpoint.
package transport

// TurnRequest is one turn from the voice transport. A missing transcript
// means no speech was captured before the prompt timeout.
type TurnRequest struct {
	CallID      string  `json:"callId" validate:"required,min=1,max=128"`
	CallerPhone string  `json:"callerPhone" validate:"required,min=5,max=32"`
	Transcript  *string `json:"transcript,omitempty" validate:"omitempty,max=4000"`
}

// TurnResponse tells the transport what to speak and whether to keep the
// call open for another turn.
type TurnResponse struct {
	Utterance                string `json:"utterance"`
	Continue                 bool   `json:"continue"`
	NextPromptTimeoutSeconds int    `json:"nextPromptTimeoutSeconds,omitempty"`
}
