package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var serviceVersionPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(-preview)?$`)

// AzureOpenAIConfig holds the Azure OpenAI connection used by both agents.
type AzureOpenAIConfig struct {
	Endpoint       string `env:"AZURE_OPENAI_ENDPOINT" validate:"required,url"`
	APIKey         string `env:"AZURE_OPENAI_API_KEY" validate:"required"`
	DeploymentName string `env:"AZURE_OPENAI_DEPLOYMENT_NAME" envDefault:"gpt-4o" validate:"required"`
	ServiceVersion string `env:"AZURE_OPENAI_SERVICE_VERSION" envDefault:"2024-10-21" validate:"required,service_version"`
}

// IsConfigured reports whether the credentials needed to call Azure are present.
func (a *AzureOpenAIConfig) IsConfigured() bool {
	return a.Endpoint != "" && a.APIKey != ""
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("service_version", func(fl validator.FieldLevel) bool {
		return serviceVersionPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the options and reports every failing field.
func (a *AzureOpenAIConfig) Validate() error {
	err := newValidator().Struct(a)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid azure openai options: %s", strings.Join(msgs, "; "))
}
