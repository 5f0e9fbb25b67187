package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pawly/config"
	"pawly/internal/domain"
	"pawly/internal/middleware"
	"pawly/internal/models"
	"pawly/internal/repository"
	"pawly/internal/service"
	"pawly/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleRepo *repository.ArticleRepository
	memberRepo  *repository.MemberRepository
	notifSvc    *service.NotificationService
	cloud       cloudinary.Client
	pageSize    int
}

func NewArticleHandler(cfg *config.Config, articleRepo *repository.ArticleRepository, memberRepo *repository.MemberRepository, notifSvc *service.NotificationService, cloud cloudinary.Client) *ArticleHandler {
	return &ArticleHandler{
		articleRepo: articleRepo,
		memberRepo:  memberRepo,
		notifSvc:    notifSvc,
		cloud:       cloud,
		pageSize:    cfg.Board.PageSize,
	}
}

type ArticleRequest struct {
	Category string `json:"category" binding:"required,oneof=FREE QNA SHARE"`
	Title    string `json:"title" binding:"required,max=255"`
	Content  string `json:"content" binding:"required"`
}

// Create accepts multipart: a "dto" JSON part plus optional "files" image
// parts.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req ArticleRequest
	if dto := c.PostForm("dto"); dto != "" {
		if err := json.Unmarshal([]byte(dto), &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dto"})
			return
		}
		if req.Category == "" || req.Title == "" || req.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category, title and content required"})
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	memberID := middleware.GetMemberID(c)
	a := &models.Article{
		MemberID: memberID,
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.articleRepo.Create(a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "article creation failed"})
		return
	}
	// Optional image uploads
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for i, file := range form.File["files"] {
			src, err := file.Open()
			if err != nil {
				continue
			}
			publicID := fmt.Sprintf("article_%d_%d_%d", a.ID, time.Now().Unix(), i)
			url, _, err := h.cloud.UploadImage(c.Request.Context(), src, "articles", publicID)
			src.Close()
			if err != nil {
				continue
			}
			_ = h.articleRepo.AddImage(&models.ArticleImage{ArticleID: a.ID, URL: url})
		}
	}
	created, err := h.articleRepo.GetByID(a.ID)
	if err != nil {
		created = a
	}
	c.JSON(http.StatusCreated, gin.H{"article": created})
}

// Get returns one article and bumps its view counter.
func (h *ArticleHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	_ = h.articleRepo.IncrementViews(uint(id))
	a, err := h.articleRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": a})
}

func (h *ArticleHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	category := c.Query("category")
	list, err := h.articleRepo.List(category, h.pageSize, page*h.pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": list, "page": page})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	a, err := h.articleRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if a.MemberID != middleware.GetMemberID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your article"})
		return
	}
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.Category = req.Category
	a.Title = req.Title
	a.Content = req.Content
	if err := h.articleRepo.Update(a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": a})
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	a, err := h.articleRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if a.MemberID != middleware.GetMemberID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your article"})
		return
	}
	if err := h.articleRepo.DeleteImages(a.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if err := h.articleRepo.Delete(a.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Like records a like and notifies the author. Liking twice is a conflict at
// the storage level and reported as such.
func (h *ArticleHandler) Like(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	a, err := h.articleRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	memberID := middleware.GetMemberID(c)
	liked, err := h.articleRepo.HasLiked(a.ID, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
		return
	}
	if liked {
		c.JSON(http.StatusConflict, gin.H{"error": "already liked"})
		return
	}
	if err := h.articleRepo.AddLike(&models.ArticleLike{ArticleID: a.ID, MemberID: memberID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
		return
	}
	if a.MemberID != memberID {
		liker, err := h.memberRepo.GetByID(memberID)
		nickname := "Someone"
		if err == nil {
			nickname = liker.Nickname
		}
		h.notifSvc.Notify(a.MemberID, fmt.Sprintf("%s liked your article %q", nickname, a.Title), domain.NotifyCodeArticleLike)
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func (h *ArticleHandler) Unlike(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	memberID := middleware.GetMemberID(c)
	if err := h.articleRepo.RemoveLike(uint(id), memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlike failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
