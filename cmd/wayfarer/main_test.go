package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/catalog"
	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		LogLevel:          "error",
		SessionTTL:        time.Minute,
		WeatherCondition:  "foggy",
		SpeakerTimeout:    2 * time.Second,
		TripMinMinutes:    40,
		TripMaxMinutes:    40,
		PreferredCuisines: []string{"vegetarian"},
		MaxPriceLevel:     2,
	}
}

func TestChatConversation(t *testing.T) {
	input := strings.Join([]string{
		"navigate to the zoo",
		"no specific time",
		"yes",
		"",
		"/reset",
		"tell me a joke",
		"/exit",
		"navigate to the moon",
	}, "\n")

	var out bytes.Buffer
	if err := chat(context.Background(), testConfig(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("chat: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"wayfarer: " + compose.InitialPlanning("the zoo"),
		"wayfarer: " + compose.WeatherCheck("foggy"),
		"wayfarer: " + compose.BreakSuggestion(40),
		"Session reset.",
		"wayfarer: " + compose.Help,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "the moon") {
		t.Error("input after /exit was processed")
	}
}

func TestAnswer(t *testing.T) {
	clock := assistant.FixedClock(time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC))
	p := assistant.NewPlanner(catalog.Default(), catalog.DefaultPreferences(), clock, slog.Default())
	ctx := context.Background()

	tests := []struct {
		what  string
		hours int
		first string
	}{
		{"day", 3, "Central Park"},
		{"restaurants", 3, "Green Leaf"},
		{"explore", 7, "Central Park"},
	}
	for _, tt := range tests {
		t.Run(tt.what, func(t *testing.T) {
			plan, err := answer(ctx, p, tt.what, tt.hours)
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if len(plan.Places) == 0 || plan.Places[0].Name != tt.first {
				t.Errorf("places = %+v", plan.Places)
			}
		})
	}

	if _, err := answer(ctx, p, "week", 3); err == nil {
		t.Error("expected error for unknown plan")
	}
}

func TestPrintPlan(t *testing.T) {
	plan := assistant.Plan{Response: "Here's your plan.", Hours: 2}

	var text bytes.Buffer
	if err := printPlan(&text, plan, false); err != nil {
		t.Fatal(err)
	}
	if text.String() != "Here's your plan.\n" {
		t.Errorf("text output = %q", text.String())
	}

	var js bytes.Buffer
	if err := printPlan(&js, plan, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(js.String(), `"response": "Here's your plan."`) {
		t.Errorf("json output = %s", js.String())
	}
}
