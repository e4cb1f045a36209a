package docauth

import (
	"time"

	"github.com/google/uuid"
)

// documentTransitions is the lifecycle graph. The outer key is the
// current status, the inner key a candidate target, and the value the
// capabilities a non-owner must hold in the document's workspace, any
// one of which authorizes the move. A missing inner entry means the
// transition is illegal for everyone, owner included. Archival is only
// reachable through stored: there is no draft to archived edge.
var documentTransitions = map[DocumentStatus]map[DocumentStatus][]Action{
	DocumentDraft: {
		DocumentStored: {ActionManage},
	},
	DocumentStored: {
		DocumentDraft:    {ActionManage},
		DocumentArchived: {ActionArchive},
	},
	DocumentArchived: {
		DocumentStored: {ActionArchive, ActionManage},
	},
}

// TransitionReason explains a transition decision.
type TransitionReason string

const (
	// ReasonOwner means the actor owns the document.
	ReasonOwner TransitionReason = "owner"
	// ReasonPermitted means a workspace capability authorized the move.
	ReasonPermitted TransitionReason = "workspace-permission"
	// ReasonNoChange means source and target status are the same.
	ReasonNoChange TransitionReason = "no-change"
	// ReasonIllegalTransition means the lifecycle graph has no such edge.
	ReasonIllegalTransition TransitionReason = "illegal-transition"
	// ReasonNotOwnerAndNoPermission means the edge exists but the actor
	// holds neither ownership nor the required capability.
	ReasonNotOwnerAndNoPermission TransitionReason = "not-owner-and-no-permission"
)

// TransitionDecision is the outcome of an authorization check.
type TransitionDecision struct {
	Allowed bool             `json:"allowed"`
	Reason  TransitionReason `json:"reason"`
}

// DocumentStateMachine authorizes and applies document lifecycle
// transitions. Legality is checked before authorization so an illegal
// move is reported as illegal even to an administrator.
type DocumentStateMachine struct {
	checker PermissionChecker
	logger  Logger
	now     func() time.Time
}

// StateMachineOption customizes DocumentStateMachine construction.
type StateMachineOption func(*DocumentStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(m *DocumentStateMachine) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithStateMachineLogger overrides the default logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(m *DocumentStateMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewDocumentStateMachine creates a state machine backed by the given
// permission checker.
func NewDocumentStateMachine(checker PermissionChecker, opts ...StateMachineOption) *DocumentStateMachine {
	m := &DocumentStateMachine{
		checker: checker,
		logger:  defLogger{},
		now:     time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// CanTransition decides whether the actor may move the document to the
// target status. Owners may take any legal edge; non-owners need one of
// the edge's capabilities in the document's workspace.
func (m *DocumentStateMachine) CanTransition(actorID uuid.UUID, actorRole Role, doc *Document, target DocumentStatus) TransitionDecision {
	if doc == nil || !target.IsValid() {
		return TransitionDecision{Allowed: false, Reason: ReasonIllegalTransition}
	}

	doc.EnsureStatus()

	if doc.Status == target {
		return TransitionDecision{Allowed: true, Reason: ReasonNoChange}
	}

	required, ok := documentTransitions[doc.Status][target]
	if !ok {
		return TransitionDecision{Allowed: false, Reason: ReasonIllegalTransition}
	}

	if doc.IsOwnedBy(actorID) {
		return TransitionDecision{Allowed: true, Reason: ReasonOwner}
	}

	if m.checker != nil {
		for _, action := range required {
			if m.checker.CanPerform(actorRole, action, doc.Workspace) {
				return TransitionDecision{Allowed: true, Reason: ReasonPermitted}
			}
		}
	}

	return TransitionDecision{Allowed: false, Reason: ReasonNotOwnerAndNoPermission}
}

// Transition authorizes and applies the move in one step. The document
// is mutated only when the decision allows.
func (m *DocumentStateMachine) Transition(actorID uuid.UUID, actorRole Role, doc *Document, target DocumentStatus) error {
	decision := m.CanTransition(actorID, actorRole, doc, target)
	if !decision.Allowed {
		switch decision.Reason {
		case ReasonNotOwnerAndNoPermission:
			return cloneWithMeta(ErrNotOwnerAndNoPermission, map[string]any{
				"document_id": doc.ID.String(),
				"workspace":   doc.Workspace.String(),
				"from":        doc.Status.String(),
				"to":          target.String(),
			})
		default:
			meta := map[string]any{"to": target.String()}
			if doc != nil {
				meta["from"] = doc.Status.String()
			}
			return cloneWithMeta(ErrIllegalTransition, meta)
		}
	}

	if decision.Reason == ReasonNoChange {
		return nil
	}

	from := doc.Status
	m.apply(doc, target)

	m.logger.Debug("document %s moved %s -> %s by %s", doc.ID, from, target, actorID)

	return nil
}

// Apply moves a document to the target status without any
// authorization check, stamping the transition timestamps. The input
// is not mutated; callers persist the returned copy. Applying the
// current status returns an unchanged copy.
func (m *DocumentStateMachine) Apply(doc *Document, target DocumentStatus) (*Document, error) {
	if doc == nil || !target.IsValid() {
		return nil, ErrIllegalTransition
	}

	out := *doc
	out.EnsureStatus()

	if out.Status == target {
		return &out, nil
	}

	if _, ok := documentTransitions[out.Status][target]; !ok {
		return nil, cloneWithMeta(ErrIllegalTransition, map[string]any{
			"from": out.Status.String(),
			"to":   target.String(),
		})
	}

	m.apply(&out, target)

	return &out, nil
}

// apply sets the status and keeps the transition timestamps coherent:
// stored_at marks the latest entry into stored, archived_at is set only
// while archived.
func (m *DocumentStateMachine) apply(doc *Document, target DocumentStatus) {
	now := m.now()

	switch target {
	case DocumentDraft:
		doc.StoredAt = nil
		doc.ArchivedAt = nil
	case DocumentStored:
		doc.StoredAt = &now
		doc.ArchivedAt = nil
	case DocumentArchived:
		doc.ArchivedAt = &now
	}

	doc.Status = target
	doc.UpdatedAt = &now
}

// LegalTargets lists the statuses reachable from the given one, in the
// lifecycle order draft, stored, archived.
func LegalTargets(from DocumentStatus) []DocumentStatus {
	edges := documentTransitions[from]
	if len(edges) == 0 {
		return nil
	}

	out := make([]DocumentStatus, 0, len(edges))
	for _, status := range []DocumentStatus{DocumentDraft, DocumentStored, DocumentArchived} {
		if _, ok := edges[status]; ok {
			out = append(out, status)
		}
	}
	return out
}

// RequiredActions lists the capabilities that authorize a non-owner to
// take the edge; nil when the edge is illegal.
func RequiredActions(from, to DocumentStatus) []Action {
	required, ok := documentTransitions[from][to]
	if !ok {
		return nil
	}
	out := make([]Action, len(required))
	copy(out, required)
	return out
}
