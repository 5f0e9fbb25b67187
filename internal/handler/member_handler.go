package handler

import (
	"fmt"
	"net/http"
	"time"

	"pawly/internal/middleware"
	"pawly/internal/repository"
	"pawly/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	memberRepo *repository.MemberRepository
	cloud      cloudinary.Client
}

func NewMemberHandler(memberRepo *repository.MemberRepository, cloud cloudinary.Client) *MemberHandler {
	return &MemberHandler{memberRepo: memberRepo, cloud: cloud}
}

func (h *MemberHandler) GetProfile(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

// CheckEmail reports whether the email is already registered; used by the
// signup form.
func (h *MemberHandler) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}
	exists, err := h.memberRepo.ExistsByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h *MemberHandler) CheckNickname(c *gin.Context) {
	nickname := c.Query("nickname")
	if nickname == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nickname required"})
		return
	}
	exists, err := h.memberRepo.ExistsByNickname(nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

type UpdateNicknameRequest struct {
	Nickname string `json:"nickname" binding:"required,min=2,max=64"`
}

func (h *MemberHandler) UpdateNickname(c *gin.Context) {
	var req UpdateNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	memberID := middleware.GetMemberID(c)
	taken, err := h.memberRepo.ExistsByNickname(req.Nickname)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "nickname already taken"})
		return
	}
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	m.Nickname = req.Nickname
	if err := h.memberRepo.Update(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

type UpdateAddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

func (h *MemberHandler) UpdateAddress(c *gin.Context) {
	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	memberID := middleware.GetMemberID(c)
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	m.Name = req.Name
	m.Phone = req.Phone
	m.Address = req.Address
	if err := h.memberRepo.Update(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

type UpdateBirthGenderRequest struct {
	Gender string `json:"gender" binding:"required,oneof=MALE FEMALE"`
	Birth  string `json:"birth" binding:"required"` // ISO date
}

func (h *MemberHandler) UpdateBirthGender(c *gin.Context) {
	var req UpdateBirthGenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	birth, err := time.Parse("2006-01-02", req.Birth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid birth format (use YYYY-MM-DD)"})
		return
	}
	memberID := middleware.GetMemberID(c)
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	m.Gender = req.Gender
	m.Birth = &birth
	if err := h.memberRepo.Update(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

// UpdateProfileImage uploads a new profile image to Cloudinary.
func (h *MemberHandler) UpdateProfileImage(c *gin.Context) {
	memberID := middleware.GetMemberID(c)
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
	publicID := fmt.Sprintf("member_%d_%d", memberID, time.Now().Unix())
	url, _, err := h.cloud.UploadImage(c.Request.Context(), src, "profiles", publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	m, err := h.memberRepo.GetByID(memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	m.ProfileImage = url
	if err := h.memberRepo.Update(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_image": url})
}
