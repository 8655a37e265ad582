package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"writium/models"
	"writium/repositories"
)

// AccessMode distinguishes read and write intent. Both currently share the
// same rule: project collaborators get full write access, there is no
// read-only tier.
type AccessMode string

const (
	ModeRead  AccessMode = "read"
	ModeWrite AccessMode = "write"
)

type ArticleService interface {
	List(actor models.Actor, params models.ArticleListParams) ([]models.Article, int64, error)
	Get(actor models.Actor, id string) (*models.Article, error)
	Create(actor models.Actor, req models.CreateArticleRequest) (*models.Article, error)
	Update(actor models.Actor, id string, req models.UpdateArticleRequest) (*models.Article, error)
	Delete(actor models.Actor, id string) error

	GetShared(token string) (*models.Article, error)
	UpdateShared(token string, req models.UpdateArticleRequest) (*models.Article, error)
	MintShareToken(actor models.Actor, id string) (string, error)
	RevokeShareToken(actor models.Actor, id string) error

	ListVersions(actor models.Actor, id string, limit int) ([]models.ArticleVersion, error)
	GetVersion(actor models.Actor, id, versionID string) (*models.ArticleVersion, error)
	RestoreVersion(actor models.Actor, id, versionID string) (*models.Article, error)
	DeleteVersion(actor models.Actor, id, versionID string) error
	ClearVersions(actor models.Actor, id string) error

	ListComments(actor models.Actor, id string) ([]models.Comment, error)
	AddComment(actor models.Actor, id string, req models.CreateCommentRequest) (*models.Comment, error)
	DeleteComment(actor models.Actor, id, commentID string) error

	CanAccess(actor models.Actor, articleID string, mode AccessMode) (bool, error)
	IsOwner(articleID, actorID string) (bool, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	versionRepo repositories.ArticleVersionRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
	projectRepo repositories.ProjectRepository
}

func NewArticleService(
	articleRepo repositories.ArticleRepository,
	versionRepo repositories.ArticleVersionRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	projectRepo repositories.ProjectRepository,
) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		versionRepo: versionRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

// CanAccess allows the owner, or a project team member matched by trimmed
// case-insensitive email. The mode argument is accepted but both modes share
// identical logic.
func (s *articleService) CanAccess(actor models.Actor, articleID string, mode AccessMode) (bool, error) {
	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if article.UserID == actor.ID {
		return true, nil
	}
	if article.ProjectID == nil || actor.Email == "" {
		return false, nil
	}
	project, err := s.projectRepo.GetByID(*article.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return memberOf(project.TeamMembers, actor.Email), nil
}

// IsOwner is the stricter check gating version history and comments; project
// collaborators do not pass it.
func (s *articleService) IsOwner(articleID, actorID string) (bool, error) {
	article, err := s.articleRepo.GetByID(articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return article.UserID == actorID, nil
}

func memberOf(members []string, email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, m := range members {
		if strings.ToLower(strings.TrimSpace(m)) == needle {
			return true
		}
	}
	return false
}

// List scopes to the actor's own articles, or — with project_id — to the
// project owner's articles in that project, visible to owner and team
// members alike. Unknown or inaccessible projects list as empty rather than
// erroring.
func (s *articleService) List(actor models.Actor, params models.ArticleListParams) ([]models.Article, int64, error) {
	if params.ProjectID == "" || !models.IsUUID(params.ProjectID) {
		return s.articleRepo.List(actor.ID, nil, params.Limit, params.Offset)
	}

	project, err := s.projectRepo.GetByID(params.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.Article{}, 0, nil
		}
		return nil, 0, err
	}
	isOwner := project.UserID == actor.ID
	isMember := actor.Email != "" && memberOf(project.TeamMembers, actor.Email)
	if !isOwner && !isMember {
		return []models.Article{}, 0, nil
	}
	ownerID := actor.ID
	if !isOwner {
		ownerID = project.UserID
	}
	return s.articleRepo.List(ownerID, &params.ProjectID, params.Limit, params.Offset)
}

func (s *articleService) Get(actor models.Actor, id string) (*models.Article, error) {
	allowed, err := s.CanAccess(actor, id, ModeRead)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrorNotFound{Message: "Article not found"}
	}
	return s.articleRepo.GetByID(id)
}

func (s *articleService) Create(actor models.Actor, req models.CreateArticleRequest) (*models.Article, error) {
	if err := s.userRepo.EnsureExists(actor.ID, actor.Email, actor.Name); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = "Untitled document"
	}
	article := &models.Article{
		UserID:     actor.ID,
		Title:      models.TruncateChars(title, models.TitleMaxLen),
		Content:    req.Content,
		TemplateID: normalizeOptional(req.TemplateID),
		References: models.ReferenceList(req.Refs()),
	}
	if req.ProjectID != nil && models.IsUUID(strings.TrimSpace(*req.ProjectID)) {
		pid := strings.TrimSpace(*req.ProjectID)
		article.ProjectID = &pid
	}
	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}
	return article, nil
}

// Update snapshots the current state into the version history before
// mutating; a request with no recognized field is a no-op and snapshots
// nothing.
func (s *articleService) Update(actor models.Actor, id string, req models.UpdateArticleRequest) (*models.Article, error) {
	allowed, err := s.CanAccess(actor, id, ModeWrite)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrorNotFound{Message: "Article not found"}
	}

	if !req.HasUpdates() {
		return s.articleRepo.GetByID(id)
	}

	if err := s.versionRepo.SnapshotAndPrune(id, models.MaxVersionsPerArticle); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.UpdateFields(id, updateFieldMap(req))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Article not found"}
		}
		return nil, err
	}
	return article, nil
}

func updateFieldMap(req models.UpdateArticleRequest) map[string]interface{} {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = models.TruncateChars(*req.Title, models.TitleMaxLen)
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.TemplateID != nil {
		fields["template_id"] = normalizeOptional(req.TemplateID)
	}
	if refs := req.Refs(); refs != nil {
		fields["references_json"] = models.ReferenceList(*refs)
	}
	return fields
}

func (s *articleService) Delete(actor models.Actor, id string) error {
	err := s.articleRepo.Delete(id, actor.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrorNotFound{Message: "Article not found"}
	}
	return err
}

func (s *articleService) GetShared(token string) (*models.Article, error) {
	article, err := s.articleRepo.GetByShareToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Share link invalid or expired"}
		}
		return nil, err
	}
	return article, nil
}

// UpdateShared edits through a share link. The token is the entire
// authorization, and this path does not record a version snapshot.
func (s *articleService) UpdateShared(token string, req models.UpdateArticleRequest) (*models.Article, error) {
	if !req.HasUpdates() {
		return s.GetShared(token)
	}
	article, err := s.articleRepo.UpdateFieldsByShareToken(token, updateFieldMap(req))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Share link invalid or expired"}
		}
		return nil, err
	}
	return article, nil
}

func (s *articleService) MintShareToken(actor models.Actor, id string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	err := s.articleRepo.SetShareToken(id, actor.ID, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", models.ErrorNotFound{Message: "Article not found"}
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *articleService) RevokeShareToken(actor models.Actor, id string) error {
	return s.articleRepo.ClearShareToken(id, actor.ID)
}

func (s *articleService) ListVersions(actor models.Actor, id string, limit int) ([]models.ArticleVersion, error) {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrorNotFound{Message: "No permission to view this article"}
	}
	return s.versionRepo.ListByArticle(id, limit)
}

func (s *articleService) GetVersion(actor models.Actor, id, versionID string) (*models.ArticleVersion, error) {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrorNotFound{Message: "No permission to view this article"}
	}
	version, err := s.versionRepo.Get(id, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Version not found"}
		}
		return nil, err
	}
	return version, nil
}

// RestoreVersion copies a snapshot back onto the live article. It does not
// snapshot the pre-restore state.
func (s *articleService) RestoreVersion(actor models.Actor, id, versionID string) (*models.Article, error) {
	allowed, err := s.CanAccess(actor, id, ModeWrite)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrorNotFound{Message: "No permission to edit this article"}
	}
	version, err := s.versionRepo.Get(id, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Version not found"}
		}
		return nil, err
	}
	article, err := s.articleRepo.UpdateFields(id, map[string]interface{}{
		"title":           version.Title,
		"content":         version.Content,
		"references_json": version.References,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{Message: "Article not found"}
		}
		return nil, err
	}
	return article, nil
}

func (s *articleService) DeleteVersion(actor models.Actor, id, versionID string) error {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return err
	}
	if !owner {
		return models.ErrorNotFound{Message: "No permission to delete this article version"}
	}
	err = s.versionRepo.Delete(id, versionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrorNotFound{Message: "Version not found"}
	}
	return err
}

func (s *articleService) ClearVersions(actor models.Actor, id string) error {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return err
	}
	if !owner {
		return models.ErrorNotFound{Message: "No permission to clear this article history"}
	}
	return s.versionRepo.ClearExceptLatest(id)
}

func (s *articleService) ListComments(actor models.Actor, id string) ([]models.Comment, error) {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrorNotFound{Message: "No permission to view comments on this article"}
	}
	return s.commentRepo.ListByArticle(id)
}

// AddComment requires exact ownership: project collaborators cannot comment.
func (s *articleService) AddComment(actor models.Actor, id string, req models.CreateCommentRequest) (*models.Comment, error) {
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, models.ErrorNotFound{Message: "No permission to comment on this article"}
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, models.ErrorValidation{Message: "Comment content cannot be empty"}
	}
	if err := s.userRepo.EnsureExists(actor.ID, actor.Email, actor.Name); err != nil {
		return nil, err
	}

	display := actor.Name
	if display == "" {
		display = actor.Email
	}
	if display == "" {
		display = "User"
	}
	comment := &models.Comment{
		ArticleID:     id,
		UserID:        actor.ID,
		AuthorDisplay: models.TruncateChars(display, models.DisplayNameMaxLen),
		Content:       content,
	}
	if models.IsUUID(strings.TrimSpace(req.ID)) {
		comment.ID = strings.TrimSpace(req.ID)
	}
	if pid := strings.TrimSpace(req.ParentID); models.IsUUID(pid) {
		comment.ParentID = &pid
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment is allowed for the article owner or the comment's author.
// Replies to a deleted comment stay in storage; there is no cascade.
func (s *articleService) DeleteComment(actor models.Actor, id, commentID string) error {
	comment, err := s.commentRepo.Get(id, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrorNotFound{Message: "Comment not found"}
		}
		return err
	}
	owner, err := s.IsOwner(id, actor.ID)
	if err != nil {
		return err
	}
	if !owner && comment.UserID != actor.ID {
		return models.ErrorForbidden{Message: "Only the article owner or comment author can delete"}
	}
	return s.commentRepo.Delete(id, commentID)
}

func normalizeOptional(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
