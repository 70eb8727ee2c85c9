package service

import (
	"fmt"
	"html"

	"budget/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg     *config.EmailConfig
	baseURL string
}

// NewEmailService 创建邮件服务，baseURL 用于生成邀请链接
func NewEmailService(cfg *config.EmailConfig, baseURL string) *EmailService {
	return &EmailService{cfg: cfg, baseURL: baseURL}
}

// SendInvitationEmail 发送家庭邀请邮件
func (s *EmailService) SendInvitationEmail(toEmail, inviter, householdName string, householdID uint) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 BUDGET_EMAIL_ENABLED=true")
	}

	subject := "【家庭账本】您收到了新的家庭邀请"
	joinLink := fmt.Sprintf("%s/api/v1/households/%d/join", s.baseURL, householdID)
	body := s.generateInvitationEmailBody(inviter, householdName, joinLink)

	return s.sendEmail(toEmail, subject, body)
}

// generateInvitationEmailBody 生成邀请邮件内容
func (s *EmailService) generateInvitationEmailBody(inviter, householdName, joinLink string) string {
	if inviter == "" {
		inviter = "家庭所有者"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .household { font-size: 20px; font-weight: bold; color: #059669; }
        .link { word-break: break-all; color: #2563eb; font-size: 12px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🏠 家庭账本</h1>
        </div>
        <div class="content">
            <p>您好！</p>
            <p><strong>%s</strong> 邀请您加入家庭：</p>
            <p class="household">%s</p>
            <p>登录后调用以下接口即可加入该家庭，加入后可以查看账户并记录交易：</p>
            <p class="link">POST %s</p>
            <p>如果您不认识邀请人，请忽略此邮件。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 家庭账本</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(inviter), html.EscapeString(householdName), html.EscapeString(joinLink))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
