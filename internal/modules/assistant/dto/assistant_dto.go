package dto

type AskRequest struct {
	Question string `json:"question" binding:"required,min=5,max=2000"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}
