package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"mobywatel/internal/authz"
	"mobywatel/internal/blob"
	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/platform/metrics"
	"mobywatel/internal/validator"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

const (
	metricKindIssue      = "document_issue"
	metricKindDataUpdate = "data_update"
)

// Engine drives the request state machine. Reads go through the plain
// stores; the processing step runs through Tx so the processed-flag check
// and the resulting mutation commit or fail together.
type Engine struct {
	tx      Tx
	issues  IssueRequestStore
	updates DataUpdateStore
	blobs   blob.Store
	gate    *authz.Gate
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewEngine(tx Tx, issues IssueRequestStore, updates DataUpdateStore, blobs blob.Store, gate *authz.Gate, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		tx:      tx,
		issues:  issues,
		updates: updates,
		blobs:   blobs,
		gate:    gate,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// IssueRequestInput is the submit payload for a document-issue request.
// Photo bytes are stored in the blob store; only the reference travels with
// the request from then on.
type IssueRequestInput struct {
	Kind             document.Kind
	Citizenship      string
	Categories       []document.LicenseCategory
	Photo            []byte
	PhotoContentType string
}

// SubmitIssueRequest validates the payload for the requested kind, stores the
// photo and creates the request in the submitted state.
func (e *Engine) SubmitIssueRequest(ctx context.Context, p authz.Principal, citizenID id.CitizenID, in IssueRequestInput) (IssueRequest, error) {
	if err := e.gate.Require(p, authz.OpSubmitRequest); err != nil {
		return IssueRequest{}, err
	}
	switch in.Kind {
	case document.KindIdentityCard:
		if strings.TrimSpace(in.Citizenship) == "" {
			return IssueRequest{}, apperrors.New(apperrors.CodeValidation, "identity card request requires citizenship")
		}
	case document.KindDriverLicense:
		if len(in.Categories) == 0 {
			return IssueRequest{}, apperrors.New(apperrors.CodeValidation, "driver license request requires at least one category")
		}
	default:
		return IssueRequest{}, apperrors.Newf(apperrors.CodeValidation, "unknown document kind %q", in.Kind)
	}

	reqID := id.NewRequestID()
	photoRef, err := e.blobs.Store(ctx, citizenID, reqID, in.Photo, in.PhotoContentType)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeValidation) {
			return IssueRequest{}, err
		}
		return IssueRequest{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to store request photo")
	}

	req := IssueRequest{
		ID:          reqID,
		CitizenID:   citizenID,
		Kind:        in.Kind,
		PhotoRef:    photoRef,
		RequestDate: e.now(),
	}
	switch in.Kind {
	case document.KindIdentityCard:
		req.Citizenship = in.Citizenship
	case document.KindDriverLicense:
		req.Categories = document.MergeCategories(nil, in.Categories)
	}

	if err := e.issues.Save(ctx, req); err != nil {
		return IssueRequest{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save issue request")
	}
	e.metrics.ObserveRequestSubmitted(metricKindIssue)
	return req, nil
}

// SubmitDataUpdateRequest creates a personal-data-change request. Nil fields
// mean the corresponding citizen field stays as it is on approval.
func (e *Engine) SubmitDataUpdateRequest(ctx context.Context, p authz.Principal, citizenID id.CitizenID, firstName, lastName *string, gender *identity.Gender) (DataUpdateRequest, error) {
	if err := e.gate.Require(p, authz.OpSubmitRequest); err != nil {
		return DataUpdateRequest{}, err
	}
	if gender != nil && *gender != identity.GenderMale && *gender != identity.GenderFemale {
		return DataUpdateRequest{}, apperrors.Newf(apperrors.CodeValidation, "unknown gender %q", *gender)
	}

	req := DataUpdateRequest{
		ID:                 id.NewRequestID(),
		CitizenID:          citizenID,
		RequestedFirstName: firstName,
		RequestedLastName:  lastName,
		RequestedGender:    gender,
		RequestDate:        e.now(),
	}
	if err := e.updates.Save(ctx, req); err != nil {
		return DataUpdateRequest{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to save data update request")
	}
	e.metrics.ObserveRequestSubmitted(metricKindDataUpdate)
	return req, nil
}

// ProcessIssueRequest moves a request to its terminal state. On approval the
// document is issued (or re-issued with merged fields) inside the same
// transaction that sets the processed flag.
func (e *Engine) ProcessIssueRequest(ctx context.Context, p authz.Principal, reqID id.RequestID, approve bool, expirationDate time.Time, actingOfficial id.OfficialID) error {
	if err := e.gate.Require(p, authz.OpProcessRequest); err != nil {
		return err
	}
	err := e.tx.RunInTx(ctx, func(stores TxStores) error {
		req, err := stores.IssueRequests.FindByID(ctx, reqID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "issue request not found")
			}
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load issue request")
		}
		if req.Processed {
			return apperrors.New(apperrors.CodeConflict, "request already processed")
		}

		if approve {
			_, err := document.Upsert(ctx, stores.Documents, document.Issuance{
				CitizenID:      req.CitizenID,
				Kind:           req.Kind,
				PhotoRef:       req.PhotoRef,
				IssueDate:      e.now(),
				ExpirationDate: expirationDate,
				IssuedBy:       actingOfficial,
				Citizenship:    req.Citizenship,
				Categories:     req.Categories,
			})
			if err != nil {
				return apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue document")
			}
		}

		req.Processed = true
		req.Approved = approve
		if err := stores.IssueRequests.Update(ctx, req); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to update issue request")
		}

		if approve {
			e.metrics.ObserveDocumentIssued(string(req.Kind))
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.ObserveRequestProcessed(metricKindIssue, outcome(approve))
	e.logger.InfoContext(ctx, "issue request processed",
		"request_id", reqID.String(), "approved", approve, "official_id", actingOfficial.String())
	return nil
}

// ProcessDataUpdateRequest moves a data-change request to its terminal state.
// Approval applies only the fields the request carries; absent fields leave
// the citizen record untouched.
func (e *Engine) ProcessDataUpdateRequest(ctx context.Context, p authz.Principal, reqID id.RequestID, approve bool) error {
	if err := e.gate.Require(p, authz.OpProcessRequest); err != nil {
		return err
	}
	err := e.tx.RunInTx(ctx, func(stores TxStores) error {
		req, err := stores.DataUpdates.FindByID(ctx, reqID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "data update request not found")
			}
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load data update request")
		}
		if req.Processed {
			return apperrors.New(apperrors.CodeConflict, "request already processed")
		}

		if approve {
			citizen, err := stores.Citizens.FindByID(ctx, req.CitizenID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return apperrors.New(apperrors.CodeNotFound, "citizen not found")
				}
				return apperrors.Wrap(err, apperrors.CodeInternal, "failed to load citizen")
			}
			if validator.FieldSet(req.RequestedFirstName) {
				citizen.FirstName = *req.RequestedFirstName
			}
			if validator.FieldSet(req.RequestedLastName) {
				citizen.LastName = *req.RequestedLastName
			}
			if req.RequestedGender != nil {
				citizen.Gender = *req.RequestedGender
			}
			if err := stores.Citizens.Update(ctx, citizen); err != nil {
				return apperrors.Wrap(err, apperrors.CodeInternal, "failed to update citizen")
			}
		}

		req.Processed = true
		req.Approved = approve
		if err := stores.DataUpdates.Update(ctx, req); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to update data update request")
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.metrics.ObserveRequestProcessed(metricKindDataUpdate, outcome(approve))
	e.logger.InfoContext(ctx, "data update request processed",
		"request_id", reqID.String(), "approved", approve)
	return nil
}

// ListPendingIssueRequests returns unprocessed issue requests, oldest first.
func (e *Engine) ListPendingIssueRequests(ctx context.Context, p authz.Principal) ([]IssueRequest, error) {
	if err := e.gate.Require(p, authz.OpProcessRequest); err != nil {
		return nil, err
	}
	reqs, err := e.issues.ListPending(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list pending issue requests")
	}
	return reqs, nil
}

// ListPendingDataUpdateRequests returns unprocessed data-change requests,
// oldest first.
func (e *Engine) ListPendingDataUpdateRequests(ctx context.Context, p authz.Principal) ([]DataUpdateRequest, error) {
	if err := e.gate.Require(p, authz.OpProcessRequest); err != nil {
		return nil, err
	}
	reqs, err := e.updates.ListPending(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list pending data update requests")
	}
	return reqs, nil
}

// ResolveRequestPhoto returns the photo attached to an issue request.
func (e *Engine) ResolveRequestPhoto(ctx context.Context, p authz.Principal, reqID id.RequestID) ([]byte, string, error) {
	if err := e.gate.Require(p, authz.OpProcessRequest); err != nil {
		return nil, "", err
	}
	req, err := e.issues.FindByID(ctx, reqID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "issue request not found")
		}
		return nil, "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to load issue request")
	}
	data, contentType, err := e.blobs.Resolve(ctx, req.PhotoRef)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", apperrors.New(apperrors.CodeNotFound, "request photo not found")
		}
		return nil, "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to resolve request photo")
	}
	return data, contentType, nil
}

func outcome(approve bool) string {
	if approve {
		return "approved"
	}
	return "rejected"
}
