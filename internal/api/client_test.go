package api

import (
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/bringup/internal/config"
)

func TestNewClient_WithAPIKey(t *testing.T) {
	cfg := config.AnthropicSettings{
		APIKey: "test-key-123",
		Model:  string(anthropic.ModelClaudeSonnet4_20250514),
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("Model = %q, want %q", client.Model(), anthropic.ModelClaudeSonnet4_20250514)
	}
	if client.Tracker() == nil {
		t.Error("Tracker should not be nil")
	}
}

func TestNewClient_WithEnvVar(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-test-key")

	client, err := NewClient(config.AnthropicSettings{})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(config.AnthropicSettings{})
	if err == nil {
		t.Fatal("NewClient should fail without an API key")
	}
	if !errors.Is(err, config.ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestNewClient_ExpandsEnvReference(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("BRINGUP_TEST_KEY", "sk-ant-from-ref")

	client, err := NewClient(config.AnthropicSettings{APIKey: "${BRINGUP_TEST_KEY}"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client == nil {
		t.Fatal("NewClient returned nil")
	}
}

func TestNewClient_DefaultModel(t *testing.T) {
	client, err := NewClient(config.AnthropicSettings{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("default model = %q", client.Model())
	}
}

func TestNewClient_BedrockTranslatesModel(t *testing.T) {
	cfg := config.AnthropicSettings{
		UseBedrock: true,
		AWSRegion:  "us-west-2",
		Model:      string(anthropic.ModelClaudeSonnet4_20250514),
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient with Bedrock failed: %v", err)
	}

	want := anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0")
	if client.Model() != want {
		t.Errorf("Model = %q, want %q", client.Model(), want)
	}
	if !client.UsesBedrock() {
		t.Error("UsesBedrock should be true")
	}
}

func TestTranslateModelForBedrock_Passthrough(t *testing.T) {
	custom := anthropic.Model("us.anthropic.claude-custom-v1:0")
	if got := translateModelForBedrock(custom); got != custom {
		t.Errorf("translated = %q, want passthrough", got)
	}
}

func TestTokenTracker_Add(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 100)

	input, output := tracker.Total()
	if input != 300 || output != 150 {
		t.Errorf("totals = %d, %d; want 300, 150", input, output)
	}
	if tracker.Calls() != 2 {
		t.Errorf("Calls = %d, want 2", tracker.Calls())
	}
}

func TestTokenTracker_Reset(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(100, 50)
	tracker.Reset()

	input, output := tracker.Total()
	if input != 0 || output != 0 || tracker.Calls() != 0 {
		t.Errorf("after reset: input=%d output=%d calls=%d", input, output, tracker.Calls())
	}
}

func TestTokenTracker_Cost(t *testing.T) {
	tracker := NewTokenTracker()

	// 1M input at $3/1M plus 1M output at $15/1M.
	tracker.Add(1_000_000, 1_000_000)

	if cost := tracker.Cost(); cost != 18.0 {
		t.Errorf("Cost = %f, want 18.0", cost)
	}
}
