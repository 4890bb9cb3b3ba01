package document

import (
	"context"
	"errors"
	"time"

	"mobywatel/internal/authz"
	"mobywatel/internal/blob"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

// Registry is the service owning document reads and the lost flag. Issuance
// goes through Upsert, which the workflow engine calls inside its processing
// transaction.
type Registry struct {
	store Store
	blobs blob.Store
	gate  *authz.Gate
}

func NewRegistry(store Store, blobs blob.Store, gate *authz.Gate) *Registry {
	return &Registry{store: store, blobs: blobs, gate: gate}
}

// List returns all documents of a citizen, ordered by kind then issue date
// descending.
func (r *Registry) List(ctx context.Context, p authz.Principal, citizenID id.CitizenID) ([]Document, error) {
	if err := r.gate.Require(p, authz.OpViewOwnData); err != nil {
		return nil, err
	}
	docs, err := r.store.ListByCitizen(ctx, citizenID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// MarkLost flags a document as lost. Only the owning citizen may do so.
// Marking an already-lost document succeeds without further effect.
func (r *Registry) MarkLost(ctx context.Context, p authz.Principal, docID id.DocumentID, requestingCitizen id.CitizenID) error {
	if err := r.gate.Require(p, authz.OpMarkDocumentLost); err != nil {
		return err
	}
	doc, err := r.store.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "document not found")
		}
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load document")
	}
	if doc.CitizenID != requestingCitizen {
		return apperrors.New(apperrors.CodeForbidden, "document does not belong to citizen")
	}
	if doc.Lost {
		return nil
	}
	doc.Lost = true
	if err := r.store.Update(ctx, doc); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to mark document lost")
	}
	return nil
}

// ResolvePhoto returns the photo of a document owned by the requesting
// citizen, with the same ownership rules as MarkLost.
func (r *Registry) ResolvePhoto(ctx context.Context, p authz.Principal, docID id.DocumentID, requestingCitizen id.CitizenID) ([]byte, string, error) {
	if err := r.gate.Require(p, authz.OpViewOwnData); err != nil {
		return nil, "", err
	}
	doc, err := r.store.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "document not found")
		}
		return nil, "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to load document")
	}
	if doc.CitizenID != requestingCitizen {
		return nil, "", apperrors.New(apperrors.CodeForbidden, "document does not belong to citizen")
	}
	data, contentType, err := r.blobs.Resolve(ctx, doc.PhotoRef)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "document photo not found")
		}
		return nil, "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to resolve document photo")
	}
	return data, contentType, nil
}

// Issuance carries everything needed to issue or re-issue a document.
type Issuance struct {
	CitizenID      id.CitizenID
	Kind           Kind
	PhotoRef       string
	IssueDate      time.Time
	ExpirationDate time.Time
	IssuedBy       id.OfficialID
	Citizenship    string
	Categories     []LicenseCategory
}

// Upsert issues a document against the given store, which must belong to the
// caller's transaction when called from the workflow. An existing document of
// the same kind is updated in place: new dates, official and photo, the lost
// flag cleared, and driver-license categories unioned with the previously
// granted set.
func Upsert(ctx context.Context, store Store, issue Issuance) (Document, error) {
	existing, err := store.FindByCitizenAndKind(ctx, issue.CitizenID, issue.Kind)
	switch {
	case err == nil:
		existing.PhotoRef = issue.PhotoRef
		existing.IssueDate = issue.IssueDate
		existing.ExpirationDate = issue.ExpirationDate
		existing.IssuedBy = issue.IssuedBy
		existing.Lost = false
		switch issue.Kind {
		case KindIdentityCard:
			existing.Citizenship = issue.Citizenship
		case KindDriverLicense:
			existing.Categories = MergeCategories(existing.Categories, issue.Categories)
		}
		if err := store.Update(ctx, existing); err != nil {
			return Document{}, err
		}
		return existing, nil

	case errors.Is(err, sentinel.ErrNotFound):
		doc := Document{
			ID:             id.NewDocumentID(),
			CitizenID:      issue.CitizenID,
			Kind:           issue.Kind,
			PhotoRef:       issue.PhotoRef,
			IssueDate:      issue.IssueDate,
			ExpirationDate: issue.ExpirationDate,
			IssuedBy:       issue.IssuedBy,
			Lost:           false,
		}
		switch issue.Kind {
		case KindIdentityCard:
			doc.Citizenship = issue.Citizenship
		case KindDriverLicense:
			doc.Categories = MergeCategories(nil, issue.Categories)
		}
		if err := store.Save(ctx, doc); err != nil {
			return Document{}, err
		}
		return doc, nil

	default:
		return Document{}, err
	}
}
