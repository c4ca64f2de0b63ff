package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	repo "github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/internal/infrastructure/imagehost"
	"github.com/oksasatya/user-management-api/pkg/helpers"
	"github.com/oksasatya/user-management-api/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotOwner           = errors.New("you are not authorized to perform this action")
	ErrEmptyFile          = errors.New("file is empty")
	ErrNotAnImage         = errors.New("only image files are allowed")
)

const profileCacheTTL = 10 * time.Minute

// Service orchestrates signup, login, profile reads/updates, picture upload
// and account deletion. Redis, Elasticsearch and the mail publisher are
// optional; a nil client disables that concern.
type Service struct {
	Repo         repo.UserRepository
	JWT          *helpers.JWTManager
	Images       imagehost.ImageHost
	ImageFolder  string
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Mail         *helpers.RabbitPublisher
	AppName      string
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, images imagehost.ImageHost, imageFolder string,
	rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string,
	mail *helpers.RabbitPublisher, appName string) *Service {
	return &Service{
		Repo:         r,
		JWT:          jwt,
		Images:       images,
		ImageFolder:  imageFolder,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Mail:         mail,
		AppName:      appName,
	}
}

func profileCacheKey(id int64) string {
	return "user:profile:" + strconv.FormatInt(id, 10)
}

type SignupInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Username    *string
	PhoneNumber *string
}

// Signup creates a new active account and issues a bearer token.
// Duplicate email/username surface as the repository duplicate errors; the
// same errors come back from the insert itself when two signups race past
// the existence checks.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, string, error) {
	if exists, err := s.Repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, "", err
	} else if exists {
		return nil, "", repo.ErrDuplicateEmail
	}
	if in.Username != nil {
		if exists, err := s.Repo.ExistsByUsername(ctx, *in.Username); err != nil {
			return nil, "", err
		} else if exists {
			return nil, "", repo.ErrDuplicateUsername
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Email:       in.Email,
		Password:    hash,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Username:    in.Username,
		PhoneNumber: in.PhoneNumber,
		IsActive:    true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, _, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	s.publishWelcome(ctx, u)
	_ = s.indexUser(ctx, u)
	return u, token, nil
}

// Login verifies credentials and issues a bearer token. A missing account and
// a wrong password both collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, _, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.GetAll(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	if s.Redis != nil {
		var cached entity.User
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileCacheKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileCacheKey(id), u, profileCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("profile cache set failed")
		}
	}
	return u, nil
}

type UpdateUserInput struct {
	FirstName   *string
	LastName    *string
	Username    *string
	PhoneNumber *string
}

// UpdateUser applies the non-nil fields of in to the target record. Only the
// account owner may update it.
func (s *Service) UpdateUser(ctx context.Context, callerID, id int64, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != u.ID {
		return nil, ErrNotOwner
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Username != nil {
		if u.Username == nil || *in.Username != *u.Username {
			if exists, err := s.Repo.ExistsByUsername(ctx, *in.Username); err != nil {
				return nil, err
			} else if exists {
				return nil, repo.ErrDuplicateUsername
			}
		}
		u.Username = in.Username
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = in.PhoneNumber
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, u.ID)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// UploadProfilePicture replaces the target account's picture. The previous
// image is deleted best-effort; a stale or already-removed external image
// must not block the upload.
func (s *Service) UploadProfilePicture(ctx context.Context, callerID, id int64, r io.Reader, size int64, filename, contentType string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != u.ID {
		return nil, ErrNotOwner
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}
	if s.Images == nil {
		return nil, errors.New("image host not configured")
	}

	if u.HasProfilePicture() {
		if err := s.Images.Delete(ctx, *u.ProfilePictureFileID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("previous image delete failed")
		}
	}

	res, err := s.Images.Upload(ctx, r, size, filename, s.ImageFolder, contentType)
	if err != nil {
		return nil, err
	}
	u.ProfilePictureURL = &res.URL
	u.ProfilePictureFileID = &res.FileID

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidateProfile(ctx, u.ID)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// DeleteUser removes the account and best-effort deletes its external image.
func (s *Service) DeleteUser(ctx context.Context, callerID, id int64) error {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if callerID != u.ID {
		return ErrNotOwner
	}

	if u.HasProfilePicture() && s.Images != nil {
		if err := s.Images.Delete(ctx, *u.ProfilePictureFileID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("image delete failed")
		}
	}

	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.invalidateProfile(ctx, u.ID)
	s.deleteUserDoc(ctx, u.ID)
	return nil
}

func (s *Service) invalidateProfile(ctx context.Context, id int64) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileCacheKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("profile cache invalidate failed")
	}
}

func (s *Service) publishWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data: map[string]any{
			"FirstName": u.FirstName,
			"Email":     u.Email,
			"AppName":   s.AppName,
		},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"username":   u.Username,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) deleteUserDoc(ctx context.Context, id int64) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchUsers performs a simple multi_match search on email, username and names.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username^2", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
