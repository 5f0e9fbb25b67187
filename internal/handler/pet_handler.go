package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pawly/internal/middleware"
	"pawly/internal/models"
	"pawly/internal/repository"
	"pawly/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type PetHandler struct {
	petRepo *repository.PetRepository
	cloud   cloudinary.Client
}

func NewPetHandler(petRepo *repository.PetRepository, cloud cloudinary.Client) *PetHandler {
	return &PetHandler{petRepo: petRepo, cloud: cloud}
}

type PetRequest struct {
	Name      string  `json:"name" binding:"required,max=64"`
	Category1 string  `json:"category1" binding:"required"`
	Category2 string  `json:"category2"`
	Gender    string  `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	Birth     string  `json:"birth"` // ISO date, optional
	Weight    float64 `json:"weight"`
}

func (h *PetHandler) Register(c *gin.Context) {
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	memberID := middleware.GetMemberID(c)
	p := &models.Pet{
		MemberID:  memberID,
		Name:      req.Name,
		Category1: req.Category1,
		Category2: req.Category2,
		Gender:    req.Gender,
		Weight:    req.Weight,
	}
	if req.Birth != "" {
		birth, err := time.Parse("2006-01-02", req.Birth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth format (use YYYY-MM-DD)"})
			return
		}
		p.Birth = &birth
	}
	if err := h.petRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pet registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pet": p})
}

func (h *PetHandler) ListMine(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	pets, err := h.petRepo.ListByMemberID(memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pets": pets})
}

func (h *PetHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.petRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pet": p})
}

func (h *PetHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.petRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	if p.MemberID != middleware.GetMemberID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pet"})
		return
	}
	var req PetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.Name = req.Name
	p.Category1 = req.Category1
	p.Category2 = req.Category2
	p.Gender = req.Gender
	p.Weight = req.Weight
	if req.Birth != "" {
		birth, err := time.Parse("2006-01-02", req.Birth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth format (use YYYY-MM-DD)"})
			return
		}
		p.Birth = &birth
	}
	if err := h.petRepo.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pet": p})
}

func (h *PetHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.petRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	if p.MemberID != middleware.GetMemberID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pet"})
		return
	}
	if err := h.petRepo.Delete(p.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UploadImage adds one image to the pet via Cloudinary. The first image also
// becomes the pet's cover image.
func (h *PetHandler) UploadImage(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	p, err := h.petRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pet not found"})
		return
	}
	if p.MemberID != middleware.GetMemberID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your pet"})
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	defer src.Close()
	publicID := fmt.Sprintf("pet_%d_%d", p.ID, time.Now().Unix())
	url, _, err := h.cloud.UploadImage(c.Request.Context(), src, "pets", publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	img := &models.PetImage{PetID: p.ID, URL: url}
	if err := h.petRepo.AddImage(img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	if p.ImageURL == "" {
		p.ImageURL = url
		_ = h.petRepo.Update(p)
	}
	c.JSON(http.StatusCreated, gin.H{"image": img})
}
