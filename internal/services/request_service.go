package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"vyruchaiBack/internal/fsm"
	"vyruchaiBack/internal/models"
)

// Validation limits for help requests.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 100
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	RewardAmountMax   = 1_000_000

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RequestStore is the slice of the request repository the service needs.
type RequestStore interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	GetRequestByID(ctx context.Context, id int) (models.Request, error)
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	GetRequestsByAuthorID(ctx context.Context, authorID int) ([]models.Request, error)
	UpdateStatus(ctx context.Context, id int, fromStatus, toStatus string) error
}

type OfferStore interface {
	CreateOffer(ctx context.Context, offer models.Offer) (models.Offer, error)
	HasOffer(ctx context.Context, requestID, helperID int) (bool, error)
	GetOffersByRequestID(ctx context.Context, requestID int) ([]models.Offer, error)
	GetOffersByHelperID(ctx context.Context, helperID int) ([]models.Offer, error)
}

type ProfileStore interface {
	GetProfilesByIDs(ctx context.Context, ids []int) (map[int]models.UserBrief, error)
}

type RequestService struct {
	RequestRepo RequestStore
	OfferRepo   OfferStore
	UserRepo    ProfileStore
}

// ListRequests returns one page of requests. Page numbers below 1 are
// coerced to 1 and the page size is clamped to MaxPageSize. Read
// failures degrade to an empty page: the listing stays available and
// the error is only logged.
func (s *RequestService) ListRequests(ctx context.Context, filter models.RequestFilter) (models.RequestPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}
	if filter.Status == "" {
		filter.Status = fsm.StatusOpen
	}

	requests, total, err := s.RequestRepo.ListRequests(ctx, filter)
	if err != nil {
		log.Printf("ListRequests: %v", err)
		return models.RequestPage{
			Requests: []models.Request{},
			Page:     filter.Page,
			PageSize: filter.PageSize,
		}, nil
	}

	totalPages := (total + filter.PageSize - 1) / filter.PageSize
	return models.RequestPage{
		Requests:   requests,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// ListAllRequests is the unpaged board listing used when the caller
// supplied no pagination parameters. Read failures degrade to an
// empty list the same way the paged variant does.
func (s *RequestService) ListAllRequests(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	filter.Page = 0
	filter.PageSize = 0
	if filter.Status == "" {
		filter.Status = fsm.StatusOpen
	}

	requests, _, err := s.RequestRepo.ListRequests(ctx, filter)
	if err != nil {
		log.Printf("ListAllRequests: %v", err)
		return []models.Request{}, nil
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

func (s *RequestService) GetRequestByID(ctx context.Context, id int) (models.Request, error) {
	return s.RequestRepo.GetRequestByID(ctx, id)
}

func (s *RequestService) GetRequestsByAuthorID(ctx context.Context, authorID int) ([]models.Request, error) {
	return s.RequestRepo.GetRequestsByAuthorID(ctx, authorID)
}

// CreateRequest validates the fields and persists the posting with the
// caller as author and status open. The first violated constraint is
// returned as a ValidationError.
func (s *RequestService) CreateRequest(ctx context.Context, authorID int, req models.Request) (models.Request, error) {
	req.AuthorID = authorID
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.ContactValue = strings.TrimSpace(req.ContactValue)

	if err := validateRequest(req); err != nil {
		return models.Request{}, err
	}
	if req.RewardType != models.RewardMoney {
		req.RewardAmount = nil
	}

	return s.RequestRepo.CreateRequest(ctx, req)
}

func validateRequest(req models.Request) error {
	if len([]rune(req.Title)) < TitleMinLen || len([]rune(req.Title)) > TitleMaxLen {
		return models.NewValidationError("title", "Заголовок должен быть от 5 до 100 символов")
	}
	if len([]rune(req.Description)) < DescriptionMinLen || len([]rune(req.Description)) > DescriptionMaxLen {
		return models.NewValidationError("description", "Описание должно быть от 10 до 2000 символов")
	}
	if req.RewardType != models.RewardThanks && req.RewardType != models.RewardMoney {
		return models.NewValidationError("reward_type", "Выберите тип вознаграждения")
	}
	if req.RewardType == models.RewardMoney {
		if req.RewardAmount == nil || *req.RewardAmount <= 0 {
			return models.NewValidationError("reward_amount", "Укажите сумму вознаграждения")
		}
		if *req.RewardAmount > RewardAmountMax {
			return models.NewValidationError("reward_amount", "Сумма не может превышать 1 000 000")
		}
	}
	if req.District == "" {
		return models.NewValidationError("district", "Выберите район")
	}
	if req.ContactType != models.ContactTelegram && req.ContactType != models.ContactPhone {
		return models.NewValidationError("contact_type", "Выберите тип контакта")
	}
	if req.ContactValue == "" {
		return models.NewValidationError("contact_value", "Укажите контактные данные")
	}
	return nil
}

// CreateOffer records the caller's willingness to help. Outcomes are
// named errors so call sites can branch: ErrRequestNotFound,
// ErrCannotOfferOwnRequest, ErrRequestClosed, ErrAlreadyOffered. The
// pre-check via HasOffer only shortens the feedback path; the unique
// key inside OfferStore.CreateOffer decides races.
func (s *RequestService) CreateOffer(ctx context.Context, requestID, helperID int) (models.Offer, error) {
	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return models.Offer{}, err
	}
	if req.AuthorID == helperID {
		return models.Offer{}, models.ErrCannotOfferOwnRequest
	}
	if req.Status != fsm.StatusOpen {
		return models.Offer{}, models.ErrRequestClosed
	}

	offered, err := s.OfferRepo.HasOffer(ctx, requestID, helperID)
	if err != nil {
		return models.Offer{}, err
	}
	if offered {
		return models.Offer{}, models.ErrAlreadyOffered
	}

	return s.OfferRepo.CreateOffer(ctx, models.Offer{RequestID: requestID, HelperID: helperID})
}

// CloseRequest moves the caller's request to closed. The call is
// idempotent: closing an already-closed request is a no-op.
func (s *RequestService) CloseRequest(ctx context.Context, requestID, callerID int) error {
	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.AuthorID != callerID {
		return models.ErrNotRequestAuthor
	}
	if req.Status == fsm.StatusClosed {
		return nil
	}
	if !fsm.CanTransition(req.Status, fsm.StatusClosed) {
		return models.ErrInvalidStatusChange
	}

	err = s.RequestRepo.UpdateStatus(ctx, requestID, req.Status, fsm.StatusClosed)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost an optimistic race; treat a concurrent close as success.
		current, ferr := s.RequestRepo.GetRequestByID(ctx, requestID)
		if ferr == nil && current.Status == fsm.StatusClosed {
			return nil
		}
		return models.ErrInvalidStatusChange
	}
	return err
}

// GetRequestContact reveals the author's contact only to the author or
// to a helper with an existing offer. Any other caller gets nil, not
// an error.
func (s *RequestService) GetRequestContact(ctx context.Context, requestID, callerID int) (*models.RequestContact, error) {
	req, err := s.RequestRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	allowed := req.AuthorID == callerID
	if !allowed {
		allowed, err = s.OfferRepo.HasOffer(ctx, requestID, callerID)
		if err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, nil
	}

	return &models.RequestContact{
		ContactType:  req.ContactType,
		ContactValue: req.ContactValue,
	}, nil
}

// GetOffers lists a request's offers with helper profiles attached.
// Profiles are loaded in one batch query keyed by the distinct helper
// IDs.
func (s *RequestService) GetOffers(ctx context.Context, requestID int) ([]models.Offer, error) {
	offers, err := s.OfferRepo.GetOffersByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return offers, nil
	}

	ids := make([]int, 0, len(offers))
	seen := make(map[int]struct{}, len(offers))
	for _, o := range offers {
		if _, ok := seen[o.HelperID]; ok {
			continue
		}
		seen[o.HelperID] = struct{}{}
		ids = append(ids, o.HelperID)
	}

	profiles, err := s.UserRepo.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range offers {
		if p, ok := profiles[offers[i].HelperID]; ok {
			offers[i].Helper = p
		}
	}
	return offers, nil
}

func (s *RequestService) GetOffersByHelperID(ctx context.Context, helperID int) ([]models.Offer, error) {
	return s.OfferRepo.GetOffersByHelperID(ctx, helperID)
}
