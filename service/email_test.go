package service

import (
	"testing"

	"budget/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{}, "https://budget.example.com")
}

func TestGenerateInvitationEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateInvitationEmailBody("owner@example.com", "张家", "https://budget.example.com/api/v1/households/3/join")
	assert.Contains(t, body, "owner@example.com")
	assert.Contains(t, body, "张家")
	assert.Contains(t, body, "/api/v1/households/3/join")
}

func TestGenerateInvitationEmailBody_EscapesAndDefaults(t *testing.T) {
	s := newTestEmailService()
	body := s.generateInvitationEmailBody("", "<script>", "x")
	assert.Contains(t, body, "家庭所有者")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<script>")
}

func TestSendInvitationEmail_Disabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendInvitationEmail("a@example.com", "b@example.com", "家", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}
