package repomanager

import "github.com/dmitrijs2005/studenthub/internal/server/models"

func newUser(studentID string) *models.User {
	return &models.User{StudentID: studentID, PasswordHash: "hash"}
}
