package rag

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNoReadyDocuments     = errors.New("no ready documents")
	ErrNoExtractableContent = errors.New("no extractable content in ready documents")
	ErrIndexIntegrity       = errors.New("index integrity violation")
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageValidate Stage = "validate"
	StageList     Stage = "list_documents"
	StageExtract  Stage = "extract"
	StageChunk    Stage = "chunk"
	StageEmbed    Stage = "embed"
	StageSearch   Stage = "search"
)

// PipelineError carries the user, document and stage of a failure.
// Unwrap keeps the sentinel reachable through errors.Is.
type PipelineError struct {
	Stage      Stage
	UserId     uuid.UUID
	DocumentId uuid.UUID
	Err        error
}

func (e *PipelineError) Error() string {
	if e.DocumentId != uuid.Nil {
		return fmt.Sprintf("rag %s (user=%s document=%s): %v", e.Stage, e.UserId, e.DocumentId, e.Err)
	}
	return fmt.Sprintf("rag %s (user=%s): %v", e.Stage, e.UserId, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(stage Stage, userId uuid.UUID, err error) *PipelineError {
	return &PipelineError{Stage: stage, UserId: userId, Err: err}
}

// StageOf reports the stage of the first PipelineError in err's chain.
func StageOf(err error) (Stage, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}
