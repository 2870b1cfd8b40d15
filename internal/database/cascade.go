package database

import (
	"context"
	"fmt"
)

// Cascading deletes walk an explicit tree:
//
//	project -> deliverables -> tickets -> (files, comments -> files)
//
// Each node deletes its children before itself, so the statement order
// follows from the shape of the tree. Callers run the walk inside WithTx;
// the walk itself never commits.

// Removed reports what a cascade deleted. Paths are the storage locations of
// deleted file rows; the bytes are still on disk until the caller unlinks
// them after commit.
type Removed struct {
	Deliverables int
	Tickets      int
	Comments     int
	Files        int
	Paths        []string
}

type fileNode struct {
	id   int64
	path string
}

type commentNode struct {
	id    int64
	files []fileNode
}

type ticketNode struct {
	id       int64
	files    []fileNode
	comments []commentNode
}

type deliverableNode struct {
	id      int64
	tickets []ticketNode
}

type projectNode struct {
	id           int64
	deliverables []deliverableNode
}

func (q *Queries) loadFiles(ctx context.Context, query string, parentID int64) ([]fileNode, error) {
	rows, err := q.q.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []fileNode
	for rows.Next() {
		var f fileNode
		if err := rows.Scan(&f.id, &f.path); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (q *Queries) loadComment(ctx context.Context, id int64) (commentNode, error) {
	files, err := q.loadFiles(ctx, `
		SELECT f.id, f.filepath FROM files f
		JOIN comment_files cf ON cf.file_id = f.id
		WHERE cf.comment_id = $1
	`, id)
	if err != nil {
		return commentNode{}, fmt.Errorf("failed to load comment %d files: %w", id, err)
	}
	return commentNode{id: id, files: files}, nil
}

func (q *Queries) loadTicket(ctx context.Context, id int64) (ticketNode, error) {
	files, err := q.loadFiles(ctx, `
		SELECT f.id, f.filepath FROM files f
		JOIN ticket_files tf ON tf.file_id = f.id
		WHERE tf.ticket_id = $1
	`, id)
	if err != nil {
		return ticketNode{}, fmt.Errorf("failed to load ticket %d files: %w", id, err)
	}

	commentIDs, err := q.queryIDs(ctx, `SELECT id FROM comments WHERE ticket_id = $1`, id)
	if err != nil {
		return ticketNode{}, fmt.Errorf("failed to load ticket %d comments: %w", id, err)
	}

	node := ticketNode{id: id, files: files}
	for _, cid := range commentIDs {
		c, err := q.loadComment(ctx, cid)
		if err != nil {
			return ticketNode{}, err
		}
		node.comments = append(node.comments, c)
	}
	return node, nil
}

func (q *Queries) loadDeliverable(ctx context.Context, id int64) (deliverableNode, error) {
	ticketIDs, err := q.queryIDs(ctx, `SELECT id FROM tickets WHERE deliverable_id = $1`, id)
	if err != nil {
		return deliverableNode{}, fmt.Errorf("failed to load deliverable %d tickets: %w", id, err)
	}

	node := deliverableNode{id: id}
	for _, tid := range ticketIDs {
		t, err := q.loadTicket(ctx, tid)
		if err != nil {
			return deliverableNode{}, err
		}
		node.tickets = append(node.tickets, t)
	}
	return node, nil
}

func (q *Queries) loadProject(ctx context.Context, id int64) (projectNode, error) {
	ids, err := q.queryIDs(ctx, `SELECT id FROM deliverables WHERE project_id = $1`, id)
	if err != nil {
		return projectNode{}, fmt.Errorf("failed to load project %d deliverables: %w", id, err)
	}

	node := projectNode{id: id}
	for _, did := range ids {
		d, err := q.loadDeliverable(ctx, did)
		if err != nil {
			return projectNode{}, err
		}
		node.deliverables = append(node.deliverables, d)
	}
	return node, nil
}

// deleteFiles drops the link rows and then the file rows. The link table
// references files, so links go first.
func (q *Queries) deleteFiles(ctx context.Context, linkTable string, files []fileNode, r *Removed) error {
	for _, f := range files {
		if _, err := q.q.ExecContext(ctx, `DELETE FROM `+linkTable+` WHERE file_id = $1`, f.id); err != nil {
			return fmt.Errorf("failed to unlink file %d: %w", f.id, err)
		}
		if _, err := q.q.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, f.id); err != nil {
			return fmt.Errorf("failed to delete file %d: %w", f.id, err)
		}
		r.Files++
		r.Paths = append(r.Paths, f.path)
	}
	return nil
}

func (c commentNode) delete(ctx context.Context, q *Queries, r *Removed) error {
	if err := q.deleteFiles(ctx, "comment_files", c.files, r); err != nil {
		return err
	}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, c.id); err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", c.id, err)
	}
	r.Comments++
	return nil
}

func (t ticketNode) delete(ctx context.Context, q *Queries, r *Removed) error {
	if err := q.deleteFiles(ctx, "ticket_files", t.files, r); err != nil {
		return err
	}
	for _, c := range t.comments {
		if err := c.delete(ctx, q, r); err != nil {
			return err
		}
	}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, t.id); err != nil {
		return fmt.Errorf("failed to delete ticket %d: %w", t.id, err)
	}
	r.Tickets++
	return nil
}

func (d deliverableNode) delete(ctx context.Context, q *Queries, r *Removed) error {
	for _, t := range d.tickets {
		if err := t.delete(ctx, q, r); err != nil {
			return err
		}
	}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM deliverables WHERE id = $1`, d.id); err != nil {
		return fmt.Errorf("failed to delete deliverable %d: %w", d.id, err)
	}
	r.Deliverables++
	return nil
}

// The activity log and memberships are removed together with the project.
func (p projectNode) delete(ctx context.Context, q *Queries, r *Removed) error {
	for _, d := range p.deliverables {
		if err := d.delete(ctx, q, r); err != nil {
			return err
		}
	}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM activity_log WHERE project_id = $1`, p.id); err != nil {
		return fmt.Errorf("failed to delete project activity: %w", err)
	}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM project_users WHERE project_id = $1`, p.id); err != nil {
		return fmt.Errorf("failed to delete project members: %w", err)
	}
	if err := q.execOne(ctx, `DELETE FROM projects WHERE id = $1`, p.id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (q *Queries) DeleteProjectCascade(ctx context.Context, projectID int64) (Removed, error) {
	var r Removed
	node, err := q.loadProject(ctx, projectID)
	if err != nil {
		return r, err
	}
	return r, node.delete(ctx, q, &r)
}

func (q *Queries) DeleteDeliverableCascade(ctx context.Context, deliverableID int64) (Removed, error) {
	var r Removed
	node, err := q.loadDeliverable(ctx, deliverableID)
	if err != nil {
		return r, err
	}
	return r, node.delete(ctx, q, &r)
}

func (q *Queries) DeleteTicketCascade(ctx context.Context, ticketID int64) (Removed, error) {
	var r Removed
	node, err := q.loadTicket(ctx, ticketID)
	if err != nil {
		return r, err
	}
	return r, node.delete(ctx, q, &r)
}

func (q *Queries) DeleteCommentCascade(ctx context.Context, commentID int64) (Removed, error) {
	var r Removed
	node, err := q.loadComment(ctx, commentID)
	if err != nil {
		return r, err
	}
	return r, node.delete(ctx, q, &r)
}

// DeleteFile removes one file row and whichever link points at it.
func (q *Queries) DeleteFile(ctx context.Context, fileID int64) (Removed, error) {
	var r Removed
	f, err := q.GetFile(ctx, fileID)
	if err != nil {
		return r, err
	}
	node := []fileNode{{id: f.ID, path: f.Filepath}}
	if _, err := q.q.ExecContext(ctx, `DELETE FROM comment_files WHERE file_id = $1`, fileID); err != nil {
		return r, fmt.Errorf("failed to unlink file %d: %w", fileID, err)
	}
	return r, q.deleteFiles(ctx, "ticket_files", node, &r)
}
