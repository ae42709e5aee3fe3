// Package config reads process configuration once at startup. Nothing below
// main reads ambient environment state; adapters get this struct by reference.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DocumentPolicy controls whether a passport-required competition insists on
// the passport number and file, or accepts them when supplied.
type DocumentPolicy string

const (
	DocumentRequired DocumentPolicy = "required"
	DocumentOptional DocumentPolicy = "optional"
)

type Config struct {
	RunAddress  string `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"festreg.db"`

	// Redirect/webhook URL construction.
	BackendBaseURL  string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8080"`
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	// Payment gateway (Instamojo-compatible API).
	InstamojoAPIKey    string `env:"INSTAMOJO_API_KEY"`
	InstamojoAuthToken string `env:"INSTAMOJO_AUTH_TOKEN"`
	InstamojoBaseURL   string `env:"INSTAMOJO_BASE_URL" envDefault:"https://www.instamojo.com/api/1.1"`
	WebhookSecret      string `env:"PAYMENT_WEBHOOK_SECRET"`

	// Document storage (Cloudinary-compatible upload API).
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
	CloudinaryBaseURL   string `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com/v1_1"`
	CloudinaryFolder    string `env:"CLOUDINARY_FOLDER" envDefault:"festreg"`

	// Transactional email (ZeptoMail-compatible API).
	ZeptoURL   string `env:"ZEPTO_URL" envDefault:"https://api.zeptomail.in/v1.1/email"`
	ZeptoToken string `env:"ZEPTO_TOKEN"`
	ZeptoFrom  string `env:"ZEPTO_FROM"`
	EmailName  string `env:"EMAIL_FROM_NAME" envDefault:"Competition Registrations"`

	// Admin auth.
	JWTSecret         string `env:"JWT_SECRET"`
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	DocumentPolicy DocumentPolicy `env:"DOCUMENT_POLICY" envDefault:"optional"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DocumentPolicy != DocumentRequired && cfg.DocumentPolicy != DocumentOptional {
		return nil, fmt.Errorf("invalid DOCUMENT_POLICY %q", cfg.DocumentPolicy)
	}
	return cfg, nil
}
