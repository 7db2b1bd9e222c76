package usecase

import (
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/config"
	"github.com/webmasterarbez/elaoms/pkg/service/digest"
)

type UseCases struct {
	memory   interfaces.MemoryGateway
	digest   digest.Service
	salience *config.SalienceTable
	persona  string
	limit    int

	Profile   *ProfileResolver
	Extractor *MemoryExtractor
	Call      *CallUseCase
}

type Option func(*UseCases)

// WithDigest sets the service that condenses completed calls. Defaults to
// the plain digest.
func WithDigest(svc digest.Service) Option {
	return func(uc *UseCases) {
		uc.digest = svc
	}
}

// WithSalienceTable replaces the built-in field to tier mapping
func WithSalienceTable(table *config.SalienceTable) Option {
	return func(uc *UseCases) {
		uc.salience = table
	}
}

// WithPersona sets the agent name used in templated greetings
func WithPersona(name string) Option {
	return func(uc *UseCases) {
		uc.persona = name
	}
}

// WithSearchLimit bounds the number of memories returned by a mid-call search
func WithSearchLimit(n int) Option {
	return func(uc *UseCases) {
		uc.limit = n
	}
}

func New(memory interfaces.MemoryGateway, opts ...Option) *UseCases {
	uc := &UseCases{
		memory: memory,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Profile = NewProfileResolver(memory, uc.persona)
	uc.Extractor = NewMemoryExtractor(memory, uc.digest, uc.salience)
	uc.Call = NewCallUseCase(uc.Profile, uc.Extractor)
	if uc.limit > 0 {
		uc.Call.searchLimit = uc.limit
	}

	return uc
}
