package cli

import (
	"context"
	"errors"

	"github.com/membox-labs/membox-cli/internal/config"
	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
	"github.com/membox-labs/membox-cli/internal/core/ports/driving"
)

type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	lastQ       string
	lastSources []string
	lastResults int
}

func (m *mockAnswerService) Ask(_ context.Context, question string, sources []string, perCollection int) (*domain.Answer, error) {
	m.lastQ = question
	m.lastSources = sources
	m.lastResults = perCollection
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Text:    "mock answer",
		Sources: []string{"GitHub: mock issue"},
		Found:   true,
	}, nil
}

type mockIngestor struct {
	reports []driving.IngestReport
	jobs    []driving.IngestJob
}

func (m *mockIngestor) Ingest(context.Context, driven.Connector, string, driven.FetchParams) (int, error) {
	return 0, errors.New("not used in CLI tests")
}

func (m *mockIngestor) IngestAll(_ context.Context, jobs []driving.IngestJob) []driving.IngestReport {
	m.jobs = jobs
	if m.reports != nil {
		return m.reports
	}
	reports := make([]driving.IngestReport, 0, len(jobs))
	for _, j := range jobs {
		reports = append(reports, driving.IngestReport{
			Source:     j.Connector.Source(),
			Collection: j.Collection,
			Items:      2,
		})
	}
	return reports
}

type mockRunStore struct {
	runs []driven.IngestRun
	err  error
}

func (m *mockRunStore) Record(_ context.Context, run driven.IngestRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunStore) Recent(_ context.Context, limit int) ([]driven.IngestRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockRunStore) Close() error { return nil }

// setupTestServices wires mock services into the package-level vars and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldCfg := cfg
	oldAnswer := answerService
	oldIngest := ingestService
	oldRuns := runStore

	SetServices(Services{
		Config:   config.Default(),
		Answerer: &mockAnswerService{},
		Ingestor: &mockIngestor{},
		Runs:     &mockRunStore{},
	})

	return func() {
		cfg = oldCfg
		answerService = oldAnswer
		ingestService = oldIngest
		runStore = oldRuns
	}
}
