package service

import (
	"errors"
	"fmt"
	"strings"

	"rfpgpt/internal/domain"
	"rfpgpt/internal/logger"
	"rfpgpt/internal/vectorstore"
)

const rfpSystemPrompt = "You are a professional proposal writer. Based on the following reference content " +
	"and the requirement, generate a detailed RFP (Request for Proposal). " +
	"The RFP should include Project Overview, Objectives, Scope of Work, " +
	"Feature Requirements, Design Requirements, Proposal Requirements, " +
	"Evaluation Criteria."

const rfpTemperature = 0.4

// RFP generates structured proposal documents from a requirement
// statement and retrieved reference material.
type RFP struct {
	store     vectorstore.Storage
	embedder  domain.Embedder
	generator domain.Generator
	topK      int
}

// NewRFP creates the proposal generation service.
func NewRFP(store vectorstore.Storage, embedder domain.Embedder, generator domain.Generator, topK int) *RFP {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RFP{store: store, embedder: embedder, generator: generator, topK: topK}
}

// Generate returns the proposal text for requirement, verbatim from
// the model. The section structure is prompt-driven, not validated.
func (s *RFP) Generate(requirement string) (string, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return "", errors.New("empty requirement")
	}
	context, err := retrieveContext(s.store, s.embedder, requirement, s.topK)
	if err != nil {
		return "", err
	}
	logger.Debug("retrieved %d bytes of reference material", len(context))

	prompt := fmt.Sprintf("\nReference Material:\n%s\n\nRequirement:\n%s\n\nGenerate the RFP:\n", context, requirement)
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: rfpSystemPrompt},
		{Role: domain.RoleUser, Content: prompt},
	}
	text, err := s.generator.Complete(messages, rfpTemperature, 0)
	if err != nil {
		return "", fmt.Errorf("generate rfp: %w", err)
	}
	return text, nil
}
