package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Notification codes classify what produced a notification.
const (
	NotifyCodeSystem         = 0
	NotifyCodeChatMessage    = 1
	NotifyCodeArticleLike    = 2
	NotifyCodeArticleComment = 3
)

const (
	PetGenderMale   = "MALE"
	PetGenderFemale = "FEMALE"
)

const (
	ArticleCategoryFree  = "FREE"
	ArticleCategoryQnA   = "QNA"
	ArticleCategoryShare = "SHARE"
)
