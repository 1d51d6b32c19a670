package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/artemcheb722/MANProject/utils"
)

const tokenCookie = "access_token"

// Server renders HTML pages backed by the API client.
type Server struct {
	api *Client
}

// NewServer creates a frontend server over the given API client.
func NewServer(api *Client) *Server {
	return &Server{api: api}
}

type listItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	City        string `json:"city"`
	Description string `json:"description"`
	MainImage   string `json:"main_image"`
}

type listData struct {
	Items []listItem `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Pages int        `json:"pages"`
}

type commentItem struct {
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

type commentList struct {
	Items []commentItem `json:"items"`
}

type projectDetail struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category"`
	Description         string   `json:"description"`
	Technologies        string   `json:"technologies"`
	DetailedDescription string   `json:"detailed_description"`
	MainImage           string   `json:"main_image"`
	Images              []string `json:"images"`
	Author              *struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	} `json:"author"`
}

type restaurantDetail struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	City                string   `json:"city"`
	Description         string   `json:"description"`
	Menu                string   `json:"menu"`
	DetailedDescription string   `json:"detailed_description"`
	MainImage           string   `json:"main_image"`
	Images              []string `json:"images"`
}

func (s *Server) token(ctx *gin.Context) string {
	t, _ := ctx.Cookie(tokenCookie)
	return t
}

func listQuery(ctx *gin.Context) url.Values {
	q := url.Values{}
	for _, key := range []string{"q", "page", "limit", "use_sharp_q_filter", "sort_by", "order_direction"} {
		if v := strings.TrimSpace(ctx.Query(key)); v != "" {
			q.Set(key, v)
		}
	}
	return q
}

func (s *Server) renderError(ctx *gin.Context, err error) {
	status := http.StatusBadGateway
	message := "Backend is unavailable"
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		message = apiErr.Message
	}
	if utils.Sugar != nil {
		utils.Sugar.Warnf("frontend request failed: %v", err)
	}
	ctx.HTML(status, "error.html", gin.H{
		"Status":   status,
		"Message":  message,
		"LoggedIn": s.token(ctx) != "",
	})
}

// Index renders the searchable project listing.
func (s *Server) Index(ctx *gin.Context) {
	var data listData
	if err := s.api.Get("/projects", listQuery(ctx), "", &data); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"Projects": data.Items,
		"Total":    data.Total,
		"Page":     data.Page,
		"Pages":    data.Pages,
		"PrevPage": data.Page - 1,
		"NextPage": data.Page + 1,
		"Query":    ctx.Query("q"),
		"Exact":    ctx.Query("use_sharp_q_filter") == "true",
		"LoggedIn": s.token(ctx) != "",
	})
}

// ProjectDetail renders one project with its comments.
func (s *Server) ProjectDetail(ctx *gin.Context) {
	pk := ctx.Param("pk")

	var detail projectDetail
	if err := s.api.Get("/projects/"+url.PathEscape(pk), nil, "", &detail); err != nil {
		s.renderError(ctx, err)
		return
	}
	var comments commentList
	if err := s.api.Get("/projects/comments/"+url.PathEscape(pk), nil, "", &comments); err != nil {
		s.renderError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "project.html", gin.H{
		"Project":  detail,
		"Comments": comments.Items,
		"LoggedIn": s.token(ctx) != "",
	})
}

// PostProjectComment submits a comment and redirects back to the project page.
func (s *Server) PostProjectComment(ctx *gin.Context) {
	token := s.token(ctx)
	if token == "" {
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}
	pk := ctx.Param("pk")
	projectID, err := strconv.ParseUint(pk, 10, 32)
	if err != nil {
		ctx.Redirect(http.StatusSeeOther, "/")
		return
	}

	body := gin.H{
		"project_id": uint(projectID),
		"feedback":   strings.TrimSpace(ctx.PostForm("feedback")),
	}
	if err := s.api.PostJSON("/projects/create_comments", body, token, nil); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/projects/"+url.PathEscape(pk))
}

// Restaurants renders the searchable restaurant listing.
func (s *Server) Restaurants(ctx *gin.Context) {
	var data listData
	if err := s.api.Get("/restaurants", listQuery(ctx), "", &data); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.HTML(http.StatusOK, "restaurants.html", gin.H{
		"Restaurants": data.Items,
		"Total":       data.Total,
		"Page":        data.Page,
		"Pages":       data.Pages,
		"PrevPage":    data.Page - 1,
		"NextPage":    data.Page + 1,
		"Query":       ctx.Query("q"),
		"Exact":       ctx.Query("use_sharp_q_filter") == "true",
		"LoggedIn":    s.token(ctx) != "",
	})
}

// RestaurantDetail renders one restaurant with comments and favourite state.
func (s *Server) RestaurantDetail(ctx *gin.Context) {
	pk := ctx.Param("pk")

	var detail restaurantDetail
	if err := s.api.Get("/restaurants/"+url.PathEscape(pk), nil, "", &detail); err != nil {
		s.renderError(ctx, err)
		return
	}
	var comments commentList
	if err := s.api.Get("/restaurants/comments/"+url.PathEscape(pk), nil, "", &comments); err != nil {
		s.renderError(ctx, err)
		return
	}

	// The check endpoint answers 404 when the restaurant is not favourited.
	favourite := false
	if token := s.token(ctx); token != "" {
		var fav struct {
			IsFavourite bool `json:"is_favourite"`
		}
		if err := s.api.Get("/restaurants/favourite/check/"+url.PathEscape(pk), nil, token, &fav); err == nil {
			favourite = fav.IsFavourite
		}
	}

	ctx.HTML(http.StatusOK, "restaurant.html", gin.H{
		"Restaurant": detail,
		"Comments":   comments.Items,
		"Favourite":  favourite,
		"LoggedIn":   s.token(ctx) != "",
	})
}

// PostRestaurantComment submits a comment and redirects back.
func (s *Server) PostRestaurantComment(ctx *gin.Context) {
	token := s.token(ctx)
	if token == "" {
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}
	pk := ctx.Param("pk")
	restaurantID, err := strconv.ParseUint(pk, 10, 32)
	if err != nil {
		ctx.Redirect(http.StatusSeeOther, "/restaurants")
		return
	}

	body := gin.H{
		"restaurant_id": uint(restaurantID),
		"feedback":      strings.TrimSpace(ctx.PostForm("feedback")),
	}
	if err := s.api.PostJSON("/restaurants/create_comments", body, token, nil); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/restaurants/"+url.PathEscape(pk))
}

// Favourite toggles a restaurant into the caller's favourites list.
func (s *Server) Favourite(ctx *gin.Context) {
	token := s.token(ctx)
	if token == "" {
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}
	pk := ctx.Param("pk")
	if err := s.api.PostJSON("/restaurants/favourite/"+url.PathEscape(pk), gin.H{}, token, nil); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/restaurants/"+url.PathEscape(pk))
}

// Unfavourite removes a restaurant from the caller's favourites list.
func (s *Server) Unfavourite(ctx *gin.Context) {
	token := s.token(ctx)
	if token == "" {
		ctx.Redirect(http.StatusSeeOther, "/login")
		return
	}
	pk := ctx.Param("pk")
	if err := s.api.Delete("/restaurants/favourite/"+url.PathEscape(pk), token, nil); err != nil {
		s.renderError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/restaurants/"+url.PathEscape(pk))
}

// LoginForm renders the login page.
func (s *Server) LoginForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", gin.H{"LoggedIn": s.token(ctx) != ""})
}

// Login exchanges credentials for a token stored in an HttpOnly cookie.
func (s *Server) Login(ctx *gin.Context) {
	form := url.Values{}
	form.Set("username", strings.TrimSpace(ctx.PostForm("email")))
	form.Set("password", ctx.PostForm("password"))

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := s.api.PostForm("/auth/login", form, "", &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			ctx.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid email or password"})
			return
		}
		s.renderError(ctx, err)
		return
	}

	ctx.SetCookie(tokenCookie, resp.AccessToken, 72*3600, "/", "", false, true)
	ctx.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm renders the registration page.
func (s *Server) RegisterForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.html", gin.H{"LoggedIn": s.token(ctx) != ""})
}

// Register creates an account via the API and sends the user to the login page.
func (s *Server) Register(ctx *gin.Context) {
	body := gin.H{
		"name":     strings.TrimSpace(ctx.PostForm("name")),
		"email":    strings.TrimSpace(ctx.PostForm("email")),
		"password": ctx.PostForm("password"),
	}
	if err := s.api.PostJSON("/users/create", body, "", nil); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			ctx.HTML(apiErr.Status, "register.html", gin.H{"Error": apiErr.Message})
			return
		}
		s.renderError(ctx, err)
		return
	}
	ctx.HTML(http.StatusOK, "login.html", gin.H{
		"Notice": "Account created. Check your inbox for the verification link.",
	})
}

// Logout clears the session cookie.
func (s *Server) Logout(ctx *gin.Context) {
	ctx.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusSeeOther, "/")
}
