// Package store persists projects and tasks in SQLite. The planning core
// (graph, planner, generation) never touches the database; this is the
// calling layer that loads task slices for it and writes results back.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskforge/internal/graph"
	"taskforge/internal/logging"
	"taskforge/internal/types"
)

// ErrNotFound reports a lookup or mutation that named a missing project or
// task. Callers branch with errors.Is.
var ErrNotFound = errors.New("not found")

// Store wraps a single-connection SQLite database holding projects and tasks.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path, creating the
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening task store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("Failed to enable sqlite foreign_keys: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Task store schema initialized")
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT '{}',
		prp_content TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		dependencies TEXT NOT NULL DEFAULT '[]',
		estimated_hours REAL,
		actual_hours REAL,
		assignee TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(project_id, status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// CreateProject inserts a new project. A missing ID is assigned a UUID.
func (s *Store) CreateProject(p *types.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Context == nil {
		p.Context = map[string]any{}
	}
	ctx, err := json.Marshal(p.Context)
	if err != nil {
		return fmt.Errorf("failed to encode project context: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO projects (id, name, context, prp_content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(ctx), p.PRPContent, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	logging.Store("Created project %s (%s)", p.ID, p.Name)
	return nil
}

// GetProject loads a project by ID.
func (s *Store) GetProject(id string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, name, context, prp_content FROM projects WHERE id = ?`, id)

	var p types.Project
	var ctx string
	if err := row.Scan(&p.ID, &p.Name, &ctx, &p.PRPContent); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if err := json.Unmarshal([]byte(ctx), &p.Context); err != nil {
		return nil, fmt.Errorf("failed to decode project context: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects ordered by creation time.
func (s *Store) ListProjects() ([]types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, name, context, prp_content FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		var p types.Project
		var ctx string
		if err := rows.Scan(&p.ID, &p.Name, &ctx, &p.PRPContent); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if err := json.Unmarshal([]byte(ctx), &p.Context); err != nil {
			return nil, fmt.Errorf("failed to decode project context: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetProjectPRPContent stores the requirement text last used to generate
// tasks for the project.
func (s *Store) SetProjectPRPContent(projectID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE projects SET prp_content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return nil
}

// DeleteProject removes a project and, via cascade, all of its tasks.
func (s *Store) DeleteProject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	logging.Store("Deleted project %s", id)
	return nil
}

// CreateTask validates the task's dependencies against the project's
// existing tasks, then inserts it. A missing ID is assigned a UUID.
func (s *Store) CreateTask(t *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = types.StatusTodo
	}
	if !t.Priority.Valid() {
		t.Priority = types.PriorityMedium
	}

	existing, err := s.tasksForProject(t.ProjectID)
	if err != nil {
		return err
	}
	if result := graph.ValidateDependencies(t.ID, t.Dependencies, append(existing, *t)); !result.IsValid {
		return fmt.Errorf("invalid dependencies: %v", result.Errors)
	}

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	s.applyCompletionInvariant(t)

	deps, err := json.Marshal(emptyIfNil(t.Dependencies))
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, project_id, title, description, status, priority,
			dependencies, estimated_hours, actual_hours, assignee, notes,
			created_at, updated_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
		string(deps), nullFloat(t.EstimatedHours), nullFloat(t.ActualHours),
		t.Assignee, t.Notes, t.CreatedAt, t.UpdatedAt, nullTime(t.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	logging.StoreDebug("Created task %s in project %s", t.ID, t.ProjectID)
	return nil
}

// GetTask loads a task by ID.
func (s *Store) GetTask(id string) (*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

// ListTasks returns all tasks in a project ordered by creation time.
func (s *Store) ListTasks(projectID string) ([]types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasksForProject(projectID)
}

// UpdateTask rewrites a task's mutable fields. Dependencies are revalidated
// against the rest of the project, and the completion timestamp is kept
// consistent with the status.
func (s *Store) UpdateTask(t *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.tasksForProject(t.ProjectID)
	if err != nil {
		return err
	}
	found := false
	for i := range existing {
		if existing[i].ID == t.ID {
			existing[i] = *t
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	if result := graph.ValidateDependencies(t.ID, t.Dependencies, existing); !result.IsValid {
		return fmt.Errorf("invalid dependencies: %v", result.Errors)
	}

	t.UpdatedAt = time.Now().UTC()
	s.applyCompletionInvariant(t)

	deps, err := json.Marshal(emptyIfNil(t.Dependencies))
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
			dependencies = ?, estimated_hours = ?, actual_hours = ?, assignee = ?,
			notes = ?, updated_at = ?, completed_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority),
		string(deps), nullFloat(t.EstimatedHours), nullFloat(t.ActualHours),
		t.Assignee, t.Notes, t.UpdatedAt, nullTime(t.CompletedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task and strips it from other tasks' dependency lists.
func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := scanTask(s.db.QueryRow(taskSelect+` WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return err
	}

	siblings, err := s.tasksForProject(t.ProjectID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	now := time.Now().UTC()
	for _, sib := range siblings {
		if sib.ID == id {
			continue
		}
		filtered := make([]string, 0, len(sib.Dependencies))
		changed := false
		for _, dep := range sib.Dependencies {
			if dep == id {
				changed = true
				continue
			}
			filtered = append(filtered, dep)
		}
		if !changed {
			continue
		}
		deps, err := json.Marshal(emptyIfNil(filtered))
		if err != nil {
			return fmt.Errorf("failed to encode dependencies: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE tasks SET dependencies = ?, updated_at = ? WHERE id = ?`,
			string(deps), now, sib.ID,
		); err != nil {
			return fmt.Errorf("failed to update dependent task: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	logging.StoreDebug("Deleted task %s", id)
	return nil
}

// applyCompletionInvariant keeps CompletedAt set exactly when the task is done.
func (s *Store) applyCompletionInvariant(t *types.Task) {
	if t.Status == types.StatusDone {
		if t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
}

const taskSelect = `SELECT id, project_id, title, description, status, priority,
	dependencies, estimated_hours, actual_hours, assignee, notes,
	created_at, updated_at, completed_at FROM tasks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*types.Task, error) {
	var t types.Task
	var status, priority, deps string
	var est, act sql.NullFloat64
	var completed sql.NullTime
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority,
		&deps, &est, &act, &t.Assignee, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &completed)
	if err != nil {
		return nil, err
	}
	t.Status = types.TaskStatus(status)
	t.Priority = types.TaskPriority(priority)
	if err := json.Unmarshal([]byte(deps), &t.Dependencies); err != nil {
		return nil, fmt.Errorf("failed to decode dependencies: %w", err)
	}
	if est.Valid {
		v := est.Float64
		t.EstimatedHours = &v
	}
	if act.Valid {
		v := act.Float64
		t.ActualHours = &v
	}
	if completed.Valid {
		v := completed.Time
		t.CompletedAt = &v
	}
	return &t, nil
}

func (s *Store) tasksForProject(projectID string) ([]types.Task, error) {
	rows, err := s.db.Query(taskSelect+` WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func emptyIfNil(deps []string) []string {
	if deps == nil {
		return []string{}
	}
	return deps
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
