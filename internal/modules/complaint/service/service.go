package complaint

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rightsvoice/backend/internal/entity"
	complaintDto "github.com/rightsvoice/backend/internal/modules/complaint/dto"
	complaintRepo "github.com/rightsvoice/backend/internal/modules/complaint/repository"
	notification "github.com/rightsvoice/backend/internal/modules/notification/service"
	points "github.com/rightsvoice/backend/internal/modules/points/service"
	userRepo "github.com/rightsvoice/backend/internal/modules/user/repository"
	"github.com/rightsvoice/backend/pkg/apperror"
	"github.com/rightsvoice/backend/pkg/dto"
	"github.com/rightsvoice/backend/pkg/storage"
)

// validTransitions encodes the moderation workflow. A complaint starts at
// pending and once resolved or rejected it is final.
var validTransitions = map[string][]string{
	entity.ComplaintStatusPending:     {entity.ComplaintStatusUnderReview},
	entity.ComplaintStatusUnderReview: {entity.ComplaintStatusResolved, entity.ComplaintStatusRejected},
}

type ComplaintService interface {
	Create(ctx context.Context, userID uuid.UUID, req complaintDto.CreateComplaintRequest, evidence io.Reader, evidenceName string) (*complaintDto.ComplaintResponse, error)
	GetByID(ctx context.Context, userID uuid.UUID, complaintID uuid.UUID) (*complaintDto.ComplaintResponse, error)
	GetOwn(ctx context.Context, userID uuid.UUID, filter complaintDto.ComplaintFilter) (*complaintDto.PaginatedComplaintResponse, error)
	GetAll(ctx context.Context, filter complaintDto.ComplaintFilter) (*complaintDto.PaginatedComplaintResponse, error)
	UpdateStatus(ctx context.Context, reviewerID uuid.UUID, complaintID uuid.UUID, req complaintDto.UpdateStatusRequest) (*complaintDto.ComplaintResponse, error)
}

type complaintService struct {
	repo                complaintRepo.ComplaintRepository
	userRepo            userRepo.UserRepository
	pointsService       points.PointsService
	notificationService notification.NotificationService
	fileStorage         storage.ImageStorage
	sanitizer           *bluemonday.Policy
}

func NewComplaintService(repo complaintRepo.ComplaintRepository, userRepo userRepo.UserRepository, pointsService points.PointsService, notificationService notification.NotificationService, fileStorage storage.ImageStorage) ComplaintService {
	return &complaintService{
		repo:                repo,
		userRepo:            userRepo,
		pointsService:       pointsService,
		notificationService: notificationService,
		fileStorage:         fileStorage,
		sanitizer:           bluemonday.UGCPolicy(),
	}
}

func (s *complaintService) Create(ctx context.Context, userID uuid.UUID, req complaintDto.CreateComplaintRequest, evidence io.Reader, evidenceName string) (*complaintDto.ComplaintResponse, error) {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be provided together", apperror.ErrBadRequest)
	}

	complaint := &entity.Complaint{
		UserID:       userID,
		Title:        s.sanitizer.Sanitize(req.Title),
		Description:  s.sanitizer.Sanitize(req.Description),
		Category:     req.Category,
		Status:       entity.ComplaintStatusPending,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		LocationName: s.sanitizer.Sanitize(req.LocationName),
	}

	if evidence != nil && s.fileStorage != nil {
		url, err := s.fileStorage.UploadImage(ctx, evidence, "evidence", evidenceName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload evidence: %w", err)
		}
		complaint.EvidenceURL = &url
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, err
	}

	if created, err := s.repo.FindByID(ctx, complaint.ID); err == nil {
		complaint = created
	}

	return mapToResponse(complaint), nil
}

func (s *complaintService) GetByID(ctx context.Context, userID uuid.UUID, complaintID uuid.UUID) (*complaintDto.ComplaintResponse, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	// Reports may contain sensitive details, only the filer and moderators see them
	if complaint.UserID != userID {
		user, err := s.userRepo.FindByID(ctx, userID.String())
		if err != nil || user.Role.Name != "admin" {
			return nil, fmt.Errorf("%w: you cannot view this complaint", apperror.ErrForbidden)
		}
	}

	return mapToResponse(complaint), nil
}

func (s *complaintService) GetOwn(ctx context.Context, userID uuid.UUID, filter complaintDto.ComplaintFilter) (*complaintDto.PaginatedComplaintResponse, error) {
	page, limit := normalizeFilter(filter)

	complaints, total, err := s.repo.FindByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return paginate(complaints, total, page, limit), nil
}

func (s *complaintService) GetAll(ctx context.Context, filter complaintDto.ComplaintFilter) (*complaintDto.PaginatedComplaintResponse, error) {
	page, limit := normalizeFilter(filter)

	complaints, total, err := s.repo.FindAll(ctx, filter.Status, filter.Category, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return paginate(complaints, total, page, limit), nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, reviewerID uuid.UUID, complaintID uuid.UUID, req complaintDto.UpdateStatusRequest) (*complaintDto.ComplaintResponse, error) {
	complaint, err := s.repo.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(complaint.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move complaint from %s to %s", apperror.ErrConflict, complaint.Status, req.Status)
	}

	complaint.Status = req.Status
	complaint.ReviewedBy = &reviewerID
	if req.Resolution != "" {
		complaint.Resolution = s.sanitizer.Sanitize(req.Resolution)
	}

	if err := s.repo.Update(ctx, complaint); err != nil {
		return nil, err
	}

	if req.Status == entity.ComplaintStatusResolved {
		err := s.pointsService.Award(ctx, complaint.UserID, entity.PointsComplaintResolved, entity.SourceComplaintResolved,
			fmt.Sprintf("Report %q was resolved", complaint.Title))
		if err != nil {
			log.Printf("failed to award resolution points for complaint %s: %v", complaint.ID, err)
		}
	}

	go s.notifyFiler(complaint, reviewerID)

	return mapToResponse(complaint), nil
}

func (s *complaintService) notifyFiler(complaint *entity.Complaint, reviewerID uuid.UUID) {
	if s.notificationService == nil {
		return
	}

	message := fmt.Sprintf("Your report %q is now %s", complaint.Title, complaint.Status)
	err := s.notificationService.CreateNotification(context.Background(), &entity.Notification{
		UserID:     complaint.UserID,
		ActorID:    reviewerID,
		EntityID:   complaint.ID,
		EntityType: "complaint",
		Type:       "complaint_status",
		Message:    message,
	})
	if err != nil {
		log.Printf("failed to create complaint status notification: %v", err)
	}
}

func transitionAllowed(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func paginate(complaints []*entity.Complaint, total int64, page, limit int) *complaintDto.PaginatedComplaintResponse {
	data := make([]complaintDto.ComplaintResponse, 0, len(complaints))
	for _, c := range complaints {
		data = append(data, *mapToResponse(c))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &complaintDto.PaginatedComplaintResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}
}

func mapToResponse(complaint *entity.Complaint) *complaintDto.ComplaintResponse {
	filer := dto.AuthorResponse{Username: "Unknown"}
	if complaint.User.Username != "" {
		filer.Username = complaint.User.Username
		filer.AvatarURL = complaint.User.AvatarURL
		filer.Country = complaint.User.Country
	}

	return &complaintDto.ComplaintResponse{
		ID:           complaint.ID,
		Title:        complaint.Title,
		Description:  complaint.Description,
		Category:     complaint.Category,
		Status:       complaint.Status,
		Latitude:     complaint.Latitude,
		Longitude:    complaint.Longitude,
		LocationName: complaint.LocationName,
		EvidenceURL:  complaint.EvidenceURL,
		Resolution:   complaint.Resolution,
		Filer:        filer,
		CreatedAt:    complaint.CreatedAt,
		UpdatedAt:    complaint.UpdatedAt,
	}
}

func normalizeFilter(filter complaintDto.ComplaintFilter) (int, int) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}
