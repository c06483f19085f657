package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tenor/config"
	"tenor/dto"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"google.golang.org/api/option"
)

var ErrCaptchaDisabled = errors.New("reCAPTCHA is not configured")

// CaptchaVerifier scores reCAPTCHA Enterprise tokens.
type CaptchaVerifier struct {
	client    *recaptcha.Client
	projectID string
	siteKey   string
}

// NewCaptchaVerifier returns a verifier, or nil when the site key or the
// Google Cloud project is not configured.
func NewCaptchaVerifier(ctx context.Context, cfg *config.Config) (*CaptchaVerifier, error) {
	if cfg.RecaptchaSiteKey == "" || cfg.RecaptchaProjectID == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.RecaptchaCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.RecaptchaCredentials))
	}
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create reCAPTCHA client: %w", err)
	}
	return &CaptchaVerifier{client: client, projectID: cfg.RecaptchaProjectID, siteKey: cfg.RecaptchaSiteKey}, nil
}

func (v *CaptchaVerifier) Close() error {
	if v == nil {
		return nil
	}
	return v.client.Close()
}

// Assess returns nil without error when the token is invalid or was issued
// for another action.
func (v *CaptchaVerifier) Assess(ctx context.Context, token, action, userIP, userAgent string) (*dto.AssessmentResult, error) {
	if v == nil {
		return nil, ErrCaptchaDisabled
	}
	response, err := v.client.CreateAssessment(ctx, &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: "projects/" + v.projectID,
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:         token,
				SiteKey:       v.siteKey,
				UserIpAddress: userIP,
				UserAgent:     userAgent,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}
	return assessmentResult(ctx, response, action), nil
}

func assessmentResult(ctx context.Context, response *recaptchaenterprisepb.Assessment, action string) *dto.AssessmentResult {
	props := response.GetTokenProperties()
	if props == nil || !props.GetValid() {
		slog.InfoContext(ctx, "reCAPTCHA token invalid", "reason", props.GetInvalidReason().String())
		return nil
	}
	if action != "" && props.GetAction() != action {
		slog.InfoContext(ctx, "reCAPTCHA action mismatch", "expected", action, "got", props.GetAction())
		return nil
	}

	result := &dto.AssessmentResult{Action: props.GetAction(), Reasons: []string{}}
	if risk := response.GetRiskAnalysis(); risk != nil {
		result.Score = risk.GetScore()
		for _, r := range risk.GetReasons() {
			result.Reasons = append(result.Reasons, r.String())
		}
	}
	return result
}
