package docauth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Documents is the document lifecycle repository: the status slice of
// the document records, not their content.
type Documents interface {
	repository.Repository[*Document]

	FindByWorkspace(ctx context.Context, workspace Workspace, statuses ...DocumentStatus) ([]*Document, error)
	FindByWorkspaceTx(ctx context.Context, tx bun.IDB, workspace Workspace, statuses ...DocumentStatus) ([]*Document, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Document, error)
	FindByOwnerTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) ([]*Document, error)

	Create(ctx context.Context, record *Document, criteria ...repository.InsertCriteria) (*Document, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Document, criteria ...repository.InsertCriteria) (*Document, error)

	ChangeStatus(ctx context.Context, machine *DocumentStateMachine, actorID uuid.UUID, actorRole Role, docID uuid.UUID, target DocumentStatus) (*Document, error)
	ChangeStatusTx(ctx context.Context, tx bun.IDB, machine *DocumentStateMachine, actorID uuid.UUID, actorRole Role, docID uuid.UUID, target DocumentStatus) (*Document, error)
}

type documents struct {
	repository.Repository[*Document]
	db *bun.DB
}

var (
	_ Documents                        = (*documents)(nil)
	_ repository.Repository[*Document] = (*documents)(nil)
)

func NewDocumentsRepository(db *bun.DB) Documents {
	repo := repository.NewRepository[*Document](db, repository.ModelHandlers[*Document]{
		NewRecord: func() *Document { return &Document{} },
		GetID: func(d *Document) uuid.UUID {
			if d == nil {
				return uuid.Nil
			}
			return d.ID
		},
		SetID: func(d *Document, id uuid.UUID) {
			if d != nil {
				d.ID = id
			}
		},
	})

	return &documents{
		Repository: repo,
		db:         db,
	}
}

func (a *documents) FindByWorkspace(ctx context.Context, workspace Workspace, statuses ...DocumentStatus) ([]*Document, error) {
	return a.FindByWorkspaceTx(ctx, a.db, workspace, statuses...)
}

func (a *documents) FindByWorkspaceTx(ctx context.Context, tx bun.IDB, workspace Workspace, statuses ...DocumentStatus) ([]*Document, error) {
	var rows []*Document
	q := tx.NewSelect().Model(&rows).
		Where("?TableAlias.workspace = ?", workspace)

	if len(statuses) > 0 {
		q = q.Where("?TableAlias.status IN (?)", bun.In(statuses))
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *documents) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Document, error) {
	return a.FindByOwnerTx(ctx, a.db, ownerID)
}

func (a *documents) FindByOwnerTx(ctx context.Context, tx bun.IDB, ownerID uuid.UUID) ([]*Document, error) {
	var rows []*Document
	err := tx.NewSelect().Model(&rows).
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *documents) Create(ctx context.Context, record *Document, criteria ...repository.InsertCriteria) (*Document, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *documents) CreateTx(ctx context.Context, tx bun.IDB, record *Document, criteria ...repository.InsertCriteria) (*Document, error) {
	prepareDocumentDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *documents) ChangeStatus(ctx context.Context, machine *DocumentStateMachine, actorID uuid.UUID, actorRole Role, docID uuid.UUID, target DocumentStatus) (*Document, error) {
	return a.ChangeStatusTx(ctx, a.db, machine, actorID, actorRole, docID, target)
}

// ChangeStatusTx loads the record, runs the lifecycle transition, and
// persists the mutated status and timestamps.
func (a *documents) ChangeStatusTx(ctx context.Context, tx bun.IDB, machine *DocumentStateMachine, actorID uuid.UUID, actorRole Role, docID uuid.UUID, target DocumentStatus) (*Document, error) {
	record, err := a.Repository.GetByIdentifierTx(ctx, tx, docID.String())
	if err != nil {
		return nil, err
	}

	previous := record.Status
	if err := machine.Transition(actorID, actorRole, record, target); err != nil {
		return nil, err
	}

	if record.Status == previous {
		return record, nil
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(docID.String()))
}

func prepareDocumentDefaults(record *Document) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
