package models

type LoginRequest struct {
	Email string `json:"email" binding:"required" validate:"required,email"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateArticleRequest struct {
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	TemplateID *string      `json:"template_id"`
	ProjectID  *string      `json:"project_id"`
	References *[]Reference `json:"references_json"`
	// Legacy alias for References accepted by the API.
	ReferencesAlias *[]Reference `json:"references"`
}

// Refs returns whichever reference field the client sent, references_json
// taking precedence.
func (r CreateArticleRequest) Refs() []Reference {
	if r.References != nil {
		return *r.References
	}
	if r.ReferencesAlias != nil {
		return *r.ReferencesAlias
	}
	return nil
}

// UpdateArticleRequest carries a partial update: nil pointers mean the field
// was absent from the request body and must not be touched.
type UpdateArticleRequest struct {
	Title           *string      `json:"title"`
	Content         *string      `json:"content"`
	TemplateID      *string      `json:"template_id"`
	References      *[]Reference `json:"references_json"`
	ReferencesAlias *[]Reference `json:"references"`
}

func (r UpdateArticleRequest) Refs() *[]Reference {
	if r.References != nil {
		return r.References
	}
	return r.ReferencesAlias
}

// HasUpdates reports whether any recognized mutable field is present. A
// request with none is a no-op: no version snapshot, current state returned.
func (r UpdateArticleRequest) HasUpdates() bool {
	return r.Title != nil || r.Content != nil || r.TemplateID != nil || r.Refs() != nil
}

type ArticleListParams struct {
	ProjectID string `form:"project_id"`
	Limit     int    `form:"limit,default=50"`
	Offset    int    `form:"offset"`
}

type CreateCommentRequest struct {
	// Optional client-generated id, honored when it is a valid UUID.
	ID       string `json:"id"`
	Content  string `json:"content" validate:"required"`
	ParentID string `json:"parent_id"`
}

type ExportDocxRequest struct {
	HTML string `json:"html"`
}

// PageMeta is the pagination envelope returned by list endpoints.
type PageMeta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}
