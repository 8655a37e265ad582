package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"writium/models"
	"writium/repositories"
)

type ArticleServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	svc         ArticleService
	versionRepo repositories.ArticleVersionRepository
	commentRepo repositories.CommentRepository

	owner    models.Actor
	stranger models.Actor
}

func (s *ArticleServiceTestSuite) SetupTest() {
	dbPath := filepath.Join(s.T().TempDir(), "writium.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Article{},
		&models.ArticleVersion{},
		&models.Comment{},
	))
	s.db = db

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	s.versionRepo = repositories.NewArticleVersionRepository(db)
	s.commentRepo = repositories.NewCommentRepository(db)

	s.svc = NewArticleService(articleRepo, s.versionRepo, s.commentRepo, userRepo, projectRepo)

	s.owner = models.Actor{ID: uuid.NewString(), Email: "owner@example.com", Name: "Owner"}
	s.stranger = models.Actor{ID: uuid.NewString(), Email: "stranger@example.com", Name: "Stranger"}
}

func (s *ArticleServiceTestSuite) createArticle(actor models.Actor) *models.Article {
	article, err := s.svc.Create(actor, models.CreateArticleRequest{
		Title:   "Draft",
		Content: "<p>hello</p>",
	})
	s.Require().NoError(err)
	return article
}

func (s *ArticleServiceTestSuite) createProject(ownerID string, members ...string) *models.Project {
	project := &models.Project{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Name:        "Research",
		TeamMembers: models.StringList(members),
	}
	s.Require().NoError(s.db.Create(project).Error)
	return project
}

func strptr(v string) *string { return &v }

func (s *ArticleServiceTestSuite) TestCreateDefaults() {
	article, err := s.svc.Create(s.owner, models.CreateArticleRequest{})
	s.Require().NoError(err)
	s.Equal("Untitled document", article.Title)
	s.NotNil(article.References)
	s.Empty(article.References)
	s.True(models.IsUUID(article.ID))

	// Creating provisions the user row.
	var user models.User
	s.NoError(s.db.First(&user, "id = ?", s.owner.ID).Error)
	s.Equal("owner@example.com", user.Email)
}

func (s *ArticleServiceTestSuite) TestCreateTruncatesTitle() {
	long := make([]byte, models.TitleMaxLen+50)
	for i := range long {
		long[i] = 'a'
	}
	article, err := s.svc.Create(s.owner, models.CreateArticleRequest{Title: string(long)})
	s.Require().NoError(err)
	s.Len(article.Title, models.TitleMaxLen)
}

func (s *ArticleServiceTestSuite) TestMultibyteTitleHandling() {
	// 300 two-byte runes is 600 bytes but only 300 characters: no truncation.
	title := strings.Repeat("é", 300)
	article, err := s.svc.Create(s.owner, models.CreateArticleRequest{Title: title})
	s.Require().NoError(err)
	s.Equal(title, article.Title)

	// Over the cap, the cut lands on a rune boundary.
	long := strings.Repeat("é", models.TitleMaxLen+5)
	article, err = s.svc.Create(s.owner, models.CreateArticleRequest{Title: long})
	s.Require().NoError(err)
	s.Equal(models.TitleMaxLen, utf8.RuneCountInString(article.Title))
	s.True(utf8.ValidString(article.Title))

	updated, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{Title: &long})
	s.Require().NoError(err)
	s.Equal(models.TitleMaxLen, utf8.RuneCountInString(updated.Title))
	s.True(utf8.ValidString(updated.Title))
}

func (s *ArticleServiceTestSuite) TestGuestProvisioning() {
	guest := models.Actor{ID: uuid.NewString(), Email: models.GuestEmail, Name: "Guest"}
	_, err := s.svc.Create(guest, models.CreateArticleRequest{Title: "From guest"})
	s.Require().NoError(err)

	var user models.User
	s.Require().NoError(s.db.First(&user, "id = ?", guest.ID).Error)
	s.Equal("guest-"+guest.ID+"@local", user.Email)
}

func (s *ArticleServiceTestSuite) TestGetDeniedForStranger() {
	article := s.createArticle(s.owner)

	_, err := s.svc.Get(s.stranger, article.ID)
	s.IsType(models.ErrorNotFound{}, err)

	got, err := s.svc.Get(s.owner, article.ID)
	s.Require().NoError(err)
	s.Equal(article.ID, got.ID)
}

func (s *ArticleServiceTestSuite) TestUpdateSnapshotsPreviousState() {
	article := s.createArticle(s.owner)

	updated, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{
		Title: strptr("Second title"),
	})
	s.Require().NoError(err)
	s.Equal("Second title", updated.Title)
	s.Equal(article.Content, updated.Content)

	versions, err := s.svc.ListVersions(s.owner, article.ID, 50)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal("Draft", versions[0].Title)
}

func (s *ArticleServiceTestSuite) TestNoOpUpdateSkipsSnapshot() {
	article := s.createArticle(s.owner)

	got, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{})
	s.Require().NoError(err)
	s.Equal(article.Title, got.Title)

	count, err := s.versionRepo.CountByArticle(article.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ArticleServiceTestSuite) TestVersionCap() {
	article := s.createArticle(s.owner)

	for i := 0; i < models.MaxVersionsPerArticle+5; i++ {
		_, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{
			Title: strptr(fmt.Sprintf("rev %d", i)),
		})
		s.Require().NoError(err)
	}

	count, err := s.versionRepo.CountByArticle(article.ID)
	s.Require().NoError(err)
	s.EqualValues(models.MaxVersionsPerArticle, count)

	// The newest snapshot holds the state prior to the last update.
	versions, err := s.svc.ListVersions(s.owner, article.ID, 1)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal(fmt.Sprintf("rev %d", models.MaxVersionsPerArticle+3), versions[0].Title)
}

func (s *ArticleServiceTestSuite) TestRestoreVersion() {
	article := s.createArticle(s.owner)
	_, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{
		Title:   strptr("After edit"),
		Content: strptr("<p>changed</p>"),
	})
	s.Require().NoError(err)

	versions, err := s.svc.ListVersions(s.owner, article.ID, 50)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)

	restored, err := s.svc.RestoreVersion(s.owner, article.ID, versions[0].ID)
	s.Require().NoError(err)
	s.Equal("Draft", restored.Title)
	s.Equal("<p>hello</p>", restored.Content)

	// Restoring records no new snapshot.
	count, err := s.versionRepo.CountByArticle(article.ID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *ArticleServiceTestSuite) TestRestoreVersionFromOtherArticle() {
	first := s.createArticle(s.owner)
	second := s.createArticle(s.owner)
	_, err := s.svc.Update(s.owner, first.ID, models.UpdateArticleRequest{Title: strptr("x")})
	s.Require().NoError(err)

	versions, err := s.svc.ListVersions(s.owner, first.ID, 50)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)

	_, err = s.svc.RestoreVersion(s.owner, second.ID, versions[0].ID)
	s.IsType(models.ErrorNotFound{}, err)
}

func (s *ArticleServiceTestSuite) TestClearVersionsKeepsLatest() {
	article := s.createArticle(s.owner)
	for i := 0; i < 4; i++ {
		_, err := s.svc.Update(s.owner, article.ID, models.UpdateArticleRequest{
			Title: strptr(fmt.Sprintf("rev %d", i)),
		})
		s.Require().NoError(err)
	}

	s.Require().NoError(s.svc.ClearVersions(s.owner, article.ID))

	versions, err := s.svc.ListVersions(s.owner, article.ID, 50)
	s.Require().NoError(err)
	s.Require().Len(versions, 1)
	s.Equal("rev 2", versions[0].Title)
}

func (s *ArticleServiceTestSuite) TestCollaboratorAccess() {
	project := s.createProject(s.owner.ID, "  Stranger@Example.com ")
	article, err := s.svc.Create(s.owner, models.CreateArticleRequest{
		Title:     "Shared work",
		ProjectID: &project.ID,
	})
	s.Require().NoError(err)

	// Team members can read and write.
	got, err := s.svc.Get(s.stranger, article.ID)
	s.Require().NoError(err)
	s.Equal(article.ID, got.ID)

	_, err = s.svc.Update(s.stranger, article.ID, models.UpdateArticleRequest{Title: strptr("edited")})
	s.Require().NoError(err)

	// But version history stays owner only.
	_, err = s.svc.ListVersions(s.stranger, article.ID, 50)
	s.IsType(models.ErrorNotFound{}, err)
}

func (s *ArticleServiceTestSuite) TestProjectScopedList() {
	project := s.createProject(s.owner.ID, s.stranger.Email)
	_, err := s.svc.Create(s.owner, models.CreateArticleRequest{Title: "In project", ProjectID: &project.ID})
	s.Require().NoError(err)
	s.createArticle(s.owner)

	// The collaborator sees the owner's project articles.
	articles, total, err := s.svc.List(s.stranger, models.ArticleListParams{ProjectID: project.ID, Limit: 50})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(articles, 1)
	s.Equal("In project", articles[0].Title)

	// An outsider gets an empty page, not an error.
	outsider := models.Actor{ID: uuid.NewString(), Email: "other@example.com"}
	articles, total, err = s.svc.List(outsider, models.ArticleListParams{ProjectID: project.ID, Limit: 50})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(articles)

	// So does everyone for an unknown project.
	articles, total, err = s.svc.List(s.owner, models.ArticleListParams{ProjectID: uuid.NewString(), Limit: 50})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(articles)
}

func (s *ArticleServiceTestSuite) TestShareTokenFlow() {
	article := s.createArticle(s.owner)

	token, err := s.svc.MintShareToken(s.owner, article.ID)
	s.Require().NoError(err)
	s.Len(token, 32)

	shared, err := s.svc.GetShared(token)
	s.Require().NoError(err)
	s.Equal(article.ID, shared.ID)

	// Shared edits are partial and untracked.
	updated, err := s.svc.UpdateShared(token, models.UpdateArticleRequest{Title: strptr("Via link")})
	s.Require().NoError(err)
	s.Equal("Via link", updated.Title)
	s.Equal(article.Content, updated.Content)

	count, err := s.versionRepo.CountByArticle(article.ID)
	s.Require().NoError(err)
	s.Zero(count)

	s.Require().NoError(s.svc.RevokeShareToken(s.owner, article.ID))
	_, err = s.svc.GetShared(token)
	s.IsType(models.ErrorNotFound{}, err)
}

func (s *ArticleServiceTestSuite) TestMintShareTokenNotOwner() {
	article := s.createArticle(s.owner)
	_, err := s.svc.MintShareToken(s.stranger, article.ID)
	s.IsType(models.ErrorNotFound{}, err)
}

func (s *ArticleServiceTestSuite) TestComments() {
	article := s.createArticle(s.owner)

	comment, err := s.svc.AddComment(s.owner, article.ID, models.CreateCommentRequest{Content: "  first  "})
	s.Require().NoError(err)
	s.Equal("first", comment.Content)
	s.Equal("Owner", comment.AuthorDisplay)

	_, err = s.svc.AddComment(s.owner, article.ID, models.CreateCommentRequest{Content: "   "})
	s.IsType(models.ErrorValidation{}, err)

	// Non-owners cannot comment, even with the article id in hand.
	_, err = s.svc.AddComment(s.stranger, article.ID, models.CreateCommentRequest{Content: "hi"})
	s.IsType(models.ErrorNotFound{}, err)

	comments, err := s.svc.ListComments(s.owner, article.ID)
	s.Require().NoError(err)
	s.Len(comments, 1)
}

func (s *ArticleServiceTestSuite) TestDeleteCommentPermissions() {
	article := s.createArticle(s.owner)

	// A comment by another author, inserted directly.
	other := models.Comment{
		ArticleID:     article.ID,
		UserID:        s.stranger.ID,
		AuthorDisplay: "Stranger",
		Content:       "drive-by",
	}
	s.Require().NoError(s.db.Create(&other).Error)

	third := models.Actor{ID: uuid.NewString(), Email: "third@example.com"}
	err := s.svc.DeleteComment(third, article.ID, other.ID)
	s.IsType(models.ErrorForbidden{}, err)

	// The author may delete their own comment.
	s.NoError(s.svc.DeleteComment(s.stranger, article.ID, other.ID))

	// Unknown comments surface as not found.
	err = s.svc.DeleteComment(s.owner, article.ID, uuid.NewString())
	s.IsType(models.ErrorNotFound{}, err)
}

func (s *ArticleServiceTestSuite) TestDeleteArticle() {
	article := s.createArticle(s.owner)

	err := s.svc.Delete(s.stranger, article.ID)
	s.IsType(models.ErrorNotFound{}, err)

	s.Require().NoError(s.svc.Delete(s.owner, article.ID))
	_, err = s.svc.Get(s.owner, article.ID)
	s.IsType(models.ErrorNotFound{}, err)
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}
