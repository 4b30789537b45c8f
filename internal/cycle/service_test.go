package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closetrack/closetrack/internal/catalog"
	"github.com/closetrack/closetrack/internal/shared"
	"github.com/closetrack/closetrack/internal/task"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	cycles        map[string]*CloseCycle
	checklists    map[string]*Checklist
	tasks         map[string][]task.Task
	statusChanges []StatusChange

	txError         error
	insertTaskError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		cycles:     make(map[string]*CloseCycle),
		checklists: make(map[string]*Checklist),
		tasks:      make(map[string][]task.Task),
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	// A copy-on-commit keeps failed seeds from leaking partial state, the way
	// a rolled back transaction would.
	snapshot := &mockRepository{
		cycles:          cloneCycles(m.cycles),
		checklists:      cloneChecklists(m.checklists),
		tasks:           cloneTasks(m.tasks),
		statusChanges:   append([]StatusChange{}, m.statusChanges...),
		insertTaskError: m.insertTaskError,
	}
	if err := fn(ctx, snapshot); err != nil {
		return err
	}
	m.cycles = snapshot.cycles
	m.checklists = snapshot.checklists
	m.tasks = snapshot.tasks
	m.statusChanges = snapshot.statusChanges
	return nil
}

func cloneCycles(in map[string]*CloseCycle) map[string]*CloseCycle {
	out := make(map[string]*CloseCycle, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneChecklists(in map[string]*Checklist) map[string]*Checklist {
	out := make(map[string]*Checklist, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneTasks(in map[string][]task.Task) map[string][]task.Task {
	out := make(map[string][]task.Task, len(in))
	for k, v := range in {
		out[k] = append([]task.Task{}, v...)
	}
	return out
}

func (m *mockRepository) InsertCycle(ctx context.Context, c CloseCycle) error {
	m.cycles[c.ID] = &c
	return nil
}

func (m *mockRepository) InsertChecklist(ctx context.Context, cl Checklist) error {
	m.checklists[cl.ID] = &cl
	return nil
}

func (m *mockRepository) InsertTask(ctx context.Context, t task.Task, position int) error {
	if m.insertTaskError != nil {
		return m.insertTaskError
	}
	m.tasks[t.ChecklistID] = append(m.tasks[t.ChecklistID], t)
	return nil
}

func (m *mockRepository) GetCycleForUpdate(ctx context.Context, id string) (*CloseCycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepository) UpdateCycleStatus(ctx context.Context, id string, status Status) error {
	c, ok := m.cycles[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	return nil
}

func (m *mockRepository) InsertStatusChange(ctx context.Context, change StatusChange) error {
	m.statusChanges = append(m.statusChanges, change)
	return nil
}

func (m *mockRepository) GetCycle(ctx context.Context, id string) (*CloseCycle, error) {
	c, ok := m.cycles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	for _, cl := range m.checklists {
		if cl.CloseCycleID == id {
			clCp := *cl
			clCp.Tasks = append([]task.Task{}, m.tasks[cl.ID]...)
			cp.Checklists = append(cp.Checklists, clCp)
		}
	}
	return &cp, nil
}

func (m *mockRepository) ListCycles(ctx context.Context) ([]CloseCycle, error) {
	var out []CloseCycle
	for _, c := range m.cycles {
		out = append(out, *c)
	}
	return out, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func testActor() *shared.Actor {
	return &shared.Actor{ID: "user-1", Name: "Jordan Lee", Role: "MANAGER"}
}

func validInput() CreateInput {
	return CreateInput{
		Name:      "March 2026 Close",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    StatusActive,
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, catalog.Default())
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateWithoutAssignments(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), validInput(), testActor())
	require.NoError(t, err)

	assert.Equal(t, "March 2026 Close", got.Name)
	assert.Equal(t, StatusActive, got.Status)
	assert.Empty(t, got.Checklists)
	assert.Empty(t, repo.checklists)
}

func TestCreateSeedsChecklistFromCatalog(t *testing.T) {
	repo := newMockRepository()
	cat := catalog.Default()
	svc := NewService(repo, cat)

	in := validInput()
	first := cat.Entries()[0].Title
	in.TaskAssignments = map[string]string{first: "user-9"}

	got, err := svc.Create(context.Background(), in, testActor())
	require.NoError(t, err)

	require.Len(t, got.Checklists, 1)
	cl := got.Checklists[0]
	assert.Equal(t, "Close Checklist", cl.Name)
	require.Len(t, cl.Tasks, cat.Size())

	// Tasks keep catalog order and every one starts NOT_STARTED.
	for i, entry := range cat.Entries() {
		assert.Equal(t, entry.Title, cl.Tasks[i].Title)
		assert.Equal(t, task.StatusNotStarted, cl.Tasks[i].Status)
		assert.Equal(t, "user-1", cl.Tasks[i].CreatedByID)
	}

	// Explicit assignment wins, everything else defaults to the creator.
	assert.Equal(t, "user-9", cl.Tasks[0].AssignedToID)
	for _, tk := range cl.Tasks[1:] {
		assert.Equal(t, "user-1", tk.AssignedToID)
	}
}

func TestCreateUnknownCatalogTitle(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	in := validInput()
	in.TaskAssignments = map[string]string{"Polish the office plants": "user-9"}

	_, err := svc.Create(context.Background(), in, testActor())
	assert.ErrorIs(t, err, ErrUnknownCatalogTitle)
	assert.Empty(t, repo.cycles)
}

func TestCreateValidation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty name", func(in *CreateInput) { in.Name = "  " }},
		{"missing dates", func(in *CreateInput) { in.StartDate = time.Time{} }},
		{"start after end", func(in *CreateInput) { in.StartDate = in.EndDate.AddDate(0, 0, 1) }},
		{"bad status", func(in *CreateInput) { in.Status = Status("OPEN") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), in, testActor())
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	assert.Empty(t, repo.cycles)
}

func TestCreateUnauthorized(t *testing.T) {
	svc := newTestService(newMockRepository())
	_, err := svc.Create(context.Background(), validInput(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateSeedFailureLeavesNothing(t *testing.T) {
	repo := newMockRepository()
	repo.insertTaskError = assert.AnError
	svc := newTestService(repo)

	in := validInput()
	in.TaskAssignments = map[string]string{catalog.Default().Entries()[0].Title: "user-9"}

	_, err := svc.Create(context.Background(), in, testActor())
	require.Error(t, err)
	assert.Empty(t, repo.cycles)
	assert.Empty(t, repo.checklists)
}

// ============================================================================
// UPDATE STATUS
// ============================================================================

func TestUpdateStatus(t *testing.T) {
	repo := newMockRepository()
	repo.cycles["c-1"] = &CloseCycle{ID: "c-1", Name: "Feb Close", Status: StatusActive}
	svc := newTestService(repo)

	got, err := svc.UpdateStatus(context.Background(), "c-1", StatusCompleted, testActor())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	require.Len(t, repo.statusChanges, 1)
	change := repo.statusChanges[0]
	assert.Equal(t, StatusActive, change.FromStatus)
	assert.Equal(t, StatusCompleted, change.ToStatus)
	assert.Equal(t, "Jordan Lee", change.ChangedByName)
}

func TestUpdateStatusInvalid(t *testing.T) {
	repo := newMockRepository()
	repo.cycles["c-1"] = &CloseCycle{ID: "c-1", Status: StatusActive}
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), "c-1", Status("FINISHED"), testActor())
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusActive, repo.cycles["c-1"].Status)
	assert.Empty(t, repo.statusChanges)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := newTestService(newMockRepository())
	_, err := svc.UpdateStatus(context.Background(), "missing", StatusArchived, testActor())
	assert.ErrorIs(t, err, ErrNotFound)
}
