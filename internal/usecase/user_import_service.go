package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nfl-pickem/internal/platform/logging"
)

type ImportUser struct {
	Line     int
	Username string
	Email    string
	Password string
}

type ImportFailure struct {
	Line  int
	Error string
}

type ImportResult struct {
	Created  int
	Failures []ImportFailure
}

// UserImportService bulk-registers accounts. bcrypt dominates the cost, so
// registrations fan out over a bounded goroutine pool.
type UserImportService struct {
	auth    *AuthService
	workers int
	logger  *logging.Logger
}

func NewUserImportService(auth *AuthService, workers int, logger *logging.Logger) *UserImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 4
	}
	return &UserImportService{auth: auth, workers: workers, logger: logger.Named("import")}
}

// Import registers every row. A failed row is reported and does not stop
// the others.
func (s *UserImportService) Import(ctx context.Context, rows []ImportUser) (ImportResult, error) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return ImportResult{}, fmt.Errorf("create import pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result ImportResult
	)
	fail := func(line int, err error) {
		mu.Lock()
		result.Failures = append(result.Failures, ImportFailure{Line: line, Error: err.Error()})
		mu.Unlock()
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			fail(row.Line, ctx.Err())
			continue
		}
		row := row
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			created, err := s.auth.Register(ctx, RegisterInput{
				Username: row.Username,
				Email:    row.Email,
				Password: row.Password,
			})
			if err != nil {
				fail(row.Line, err)
				return
			}
			mu.Lock()
			result.Created++
			mu.Unlock()
			s.logger.DebugContext(ctx, "user imported", "line", row.Line, "user_id", created.ID)
		})
		if submitErr != nil {
			wg.Done()
			fail(row.Line, submitErr)
		}
	}
	wg.Wait()

	sortImportFailures(result.Failures)
	s.logger.InfoContext(ctx, "user import finished", "created", result.Created, "failed", len(result.Failures))
	return result, nil
}

func sortImportFailures(items []ImportFailure) {
	sort.Slice(items, func(i, j int) bool { return items[i].Line < items[j].Line })
}
