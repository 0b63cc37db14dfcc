package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

const projectColumns = `id, name, context_path, created_at, updated_at`

// GetProjectByID retrieves a project by id
func GetProjectByID(ctx context.Context, db sqlscan.Querier, id string) (*Project, error) {
	var p Project
	err := sqlscan.Get(ctx, db, &p, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetDefaultProject returns the earliest created project
func GetDefaultProject(ctx context.Context, db sqlscan.Querier) (*Project, error) {
	var p Project
	err := sqlscan.Get(ctx, db, &p, `SELECT `+projectColumns+` FROM projects ORDER BY created_at, rowid LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project
func CreateProject(ctx context.Context, db Execer, project *Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, project.ID, project.Name, project.ContextPath, project.CreatedAt, project.UpdatedAt)
	return err
}

// EnsureDefaultProject returns the default project, creating it when the
// database has none.
func EnsureDefaultProject(ctx context.Context, db ExecQuerier, name, contextPath string) (*Project, error) {
	p, err := GetDefaultProject(ctx, db)
	if err != nil || p != nil {
		return p, err
	}
	p = &Project{Name: name, ContextPath: contextPath}
	if err := CreateProject(ctx, db, p); err != nil {
		return nil, fmt.Errorf("failed to create default project: %w", err)
	}
	return p, nil
}

// GetProjectMember returns the membership of user in project
func GetProjectMember(ctx context.Context, db sqlscan.Querier, projectID, userID string) (*ProjectMember, error) {
	var m ProjectMember
	query := `SELECT project_id, user_id, role, created_at FROM project_members WHERE project_id = ? AND user_id = ?`
	err := sqlscan.Get(ctx, db, &m, query, projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListProjectMembers returns the members of a project, oldest first
func ListProjectMembers(ctx context.Context, db sqlscan.Querier, projectID string) ([]ProjectMember, error) {
	var members []ProjectMember
	query := `SELECT project_id, user_id, role, created_at FROM project_members WHERE project_id = ? ORDER BY created_at`
	if err := sqlscan.Select(ctx, db, &members, query, projectID); err != nil {
		return nil, err
	}
	return members, nil
}

// AddProjectMember adds a user to a project. An existing membership keeps its
// role.
func AddProjectMember(ctx context.Context, db Execer, member *ProjectMember) error {
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	query := `INSERT INTO project_members (project_id, user_id, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, user_id) DO NOTHING`
	_, err := db.ExecContext(ctx, query, member.ProjectID, member.UserID, member.Role, member.CreatedAt)
	return err
}

// AssignAdminToOrphanedProject makes the first registered user an admin of
// every project that has no admin. It reports how many projects were updated.
func AssignAdminToOrphanedProject(ctx context.Context, db ExecQuerier) (int, error) {
	user, err := GetFirstUser(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get first user: %w", err)
	}
	if user == nil {
		return 0, nil
	}

	var orphaned []string
	query := `SELECT p.id FROM projects p
		WHERE NOT EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.role = 'admin')`
	if err := sqlscan.Select(ctx, db, &orphaned, query); err != nil {
		return 0, fmt.Errorf("failed to find orphaned projects: %w", err)
	}

	for _, projectID := range orphaned {
		upsert := `INSERT INTO project_members (project_id, user_id, role, created_at) VALUES (?, ?, 'admin', ?)
			ON CONFLICT (project_id, user_id) DO UPDATE SET role = 'admin'`
		if _, err := db.ExecContext(ctx, upsert, projectID, user.ID, time.Now()); err != nil {
			return 0, fmt.Errorf("failed to assign admin to project %s: %w", projectID, err)
		}
	}
	return len(orphaned), nil
}
