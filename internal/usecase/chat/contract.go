package chat

import (
	"context"

	"github.com/kailas-cloud/docrag/internal/domain/mode"
	"github.com/kailas-cloud/docrag/internal/usecase/prompt"
	"github.com/kailas-cloud/docrag/internal/usecase/retrieval"
)

// Retriever fetches context chunks for a mode.
type Retriever interface {
	Retrieve(ctx context.Context, query string, m mode.Mode) (retrieval.Retrieval, error)
}

// Assembler builds the generation request.
type Assembler interface {
	Assemble(in prompt.Input) (prompt.Request, error)
}
