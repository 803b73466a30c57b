package restaurants

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forkline/storefront/internal/status"
	"github.com/forkline/storefront/pkg/db"
	"github.com/forkline/storefront/pkg/db/models"
	pkgerrors "github.com/forkline/storefront/pkg/errors"
	"github.com/forkline/storefront/pkg/logger"
	"github.com/forkline/storefront/pkg/pagination"
	"github.com/forkline/storefront/pkg/types"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type restaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	List(ctx context.Context, params pagination.Params) ([]models.Restaurant, error)
	ListAll(ctx context.Context) ([]models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type statusCache interface {
	Get(ctx context.Context, restaurantID string) (status.Evaluation, bool, error)
}

// Service exposes restaurant reads with live status, admin mutations and the
// ordering gate used by the cart.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error)
	Create(ctx context.Context, input CreateRestaurantInput) (*RestaurantDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRestaurantInput) (*RestaurantDTO, error)
	SetFlags(ctx context.Context, id uuid.UUID, input FlagsInput) (*RestaurantDTO, error)
	SetSchedule(ctx context.Context, id uuid.UUID, input ScheduleInput) (*RestaurantDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AcceptingOrders(ctx context.Context, restaurantID string) (bool, error)
	Targets(ctx context.Context) ([]status.Target, error)
}

// ServiceParams configure the restaurant service. Statuses and Now are optional.
type ServiceParams struct {
	Repo     restaurantRepository
	Statuses statusCache
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     restaurantRepository
	statuses statusCache
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a restaurant service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		statuses: params.Statuses,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}

	page, next := pagination.Page(rows, params.Limit, func(r models.Restaurant) pagination.Cursor {
		return pagination.Cursor{Key: r.Name, ID: r.ID}
	})
	out := make([]RestaurantDTO, 0, len(page))
	for i := range page {
		out = append(out, fromModel(&page[i], s.statusFor(ctx, &page[i])))
	}
	return &ListResult{Restaurants: out, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RestaurantDTO, error) {
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(restaurant, s.statusFor(ctx, restaurant))
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateRestaurantInput) (*RestaurantDTO, error) {
	restaurant := input.toModel()
	if err := validateProfile(restaurant); err != nil {
		return nil, err
	}
	if err := validateHours(input.Schedule, restaurant.TimeZone); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, restaurant); err != nil {
		return nil, mapWriteError(err, "create restaurant")
	}
	s.logg.Info(s.logg.WithRestaurantID(ctx, restaurant.ID.String()), "restaurant.created")
	return s.live(restaurant), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRestaurantInput) (*RestaurantDTO, error) {
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(restaurant, input)
	if err := validateProfile(restaurant); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, restaurant); err != nil {
		return nil, mapWriteError(err, "update restaurant")
	}
	return s.live(restaurant), nil
}

func (s *service) SetFlags(ctx context.Context, id uuid.UUID, input FlagsInput) (*RestaurantDTO, error) {
	if input.ManualOpen == nil && input.TemporarilyClosed == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one flag is required")
	}
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ManualOpen != nil {
		restaurant.ManualOpen = *input.ManualOpen
	}
	if input.TemporarilyClosed != nil {
		restaurant.TemporarilyClosed = *input.TemporarilyClosed
	}
	if err := s.repo.Update(ctx, restaurant); err != nil {
		return nil, mapWriteError(err, "update restaurant flags")
	}

	ctx = s.logg.WithFields(s.logg.WithRestaurantID(ctx, id.String()), map[string]any{
		"manual_open":        restaurant.ManualOpen,
		"temporarily_closed": restaurant.TemporarilyClosed,
	})
	s.logg.Info(ctx, "restaurant.flags_updated")
	return s.live(restaurant), nil
}

func (s *service) SetSchedule(ctx context.Context, id uuid.UUID, input ScheduleInput) (*RestaurantDTO, error) {
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	zone := restaurant.TimeZone
	if input.TimeZone != nil {
		zone = normalizeZone(*input.TimeZone)
	}
	if err := validateHours(input.Schedule, zone); err != nil {
		return nil, err
	}

	restaurant.Schedule = types.NewNullSchedule(input.Schedule)
	restaurant.TimeZone = zone
	if err := s.repo.Update(ctx, restaurant); err != nil {
		return nil, mapWriteError(err, "update restaurant schedule")
	}
	return s.live(restaurant), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete restaurant")
	}
	s.logg.Info(s.logg.WithRestaurantID(ctx, id.String()), "restaurant.deleted")
	return nil
}

// AcceptingOrders evaluates the restaurant live; cached snapshots are never
// trusted for the ordering decision.
func (s *service) AcceptingOrders(ctx context.Context, restaurantID string) (bool, error) {
	id, err := uuid.Parse(restaurantID)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
	}
	restaurant, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}
	return status.Evaluate(statusInput(restaurant), s.now()).IsOpen(), nil
}

// Targets lists every restaurant as an evaluator input for the status worker.
func (s *service) Targets(ctx context.Context) ([]status.Target, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurants")
	}
	targets := make([]status.Target, 0, len(rows))
	for i := range rows {
		targets = append(targets, status.Target{ID: rows[i].ID.String(), Input: statusInput(&rows[i])})
	}
	return targets, nil
}

// statusFor prefers a worker snapshot taken after the row last changed and
// falls back to a live evaluation.
func (s *service) statusFor(ctx context.Context, restaurant *models.Restaurant) StatusDTO {
	if s.statuses != nil {
		ev, ok, err := s.statuses.Get(ctx, restaurant.ID.String())
		if err != nil {
			s.logg.Warn(s.logg.WithField(s.logg.WithRestaurantID(ctx, restaurant.ID.String()), "error", err.Error()), "restaurant.status_snapshot_unavailable")
		}
		if ok && !ev.EvaluatedAt.Before(restaurant.UpdatedAt) {
			return StatusDTO{Result: ev.Result, EvaluatedAt: ev.EvaluatedAt}
		}
	}
	now := s.now()
	return StatusDTO{Result: status.Evaluate(statusInput(restaurant), now), EvaluatedAt: now.UTC()}
}

func (s *service) live(restaurant *models.Restaurant) *RestaurantDTO {
	now := s.now()
	dto := fromModel(restaurant, StatusDTO{Result: status.Evaluate(statusInput(restaurant), now), EvaluatedAt: now.UTC()})
	return &dto
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}

func validateProfile(r *models.Restaurant) error {
	details := map[string]string{}
	if !slugPattern.MatchString(r.Slug) {
		details["slug"] = "must be lowercase letters, digits and single hyphens"
	}
	if r.Name == "" {
		details["name"] = "is required"
	}
	if r.Address == "" {
		details["address"] = "is required"
	}
	if (r.PickupLat == nil) != (r.PickupLng == nil) {
		details["pickup"] = "latitude and longitude must be set together"
	}
	if r.PickupLat != nil && (*r.PickupLat < -90 || *r.PickupLat > 90) {
		details["pickup_lat"] = "must be between -90 and 90"
	}
	if r.PickupLng != nil && (*r.PickupLng < -180 || *r.PickupLng > 180) {
		details["pickup_lng"] = "must be between -180 and 180"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid restaurant").WithDetails(details)
	}
	return nil
}

func validateHours(schedule *types.WeeklySchedule, zone string) error {
	if strings.EqualFold(zone, "local") {
		return pkgerrors.New(pkgerrors.CodeValidation, "time_zone must be an IANA zone name")
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown time_zone").
			WithDetails(map[string]string{"time_zone": zone})
	}
	if schedule == nil {
		return nil
	}
	if err := schedule.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid schedule").
			WithDetails(map[string]string{"schedule": err.Error()})
	}
	return nil
}

func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "slug already in use")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
