package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEvent() BuyingSignalEvent {
	return BuyingSignalEvent{
		EventID:   "evt_test_1",
		Timestamp: time.Now().UTC(),
		Source: SignalSource{
			Platform:    SourceLinkedIn,
			ContentType: "company_post",
			URL:         "https://linkedin.com/posts/123",
		},
		Company: CompanyMatch{
			CompanyName:       "Acme Logistics",
			MatchScore:        0.75,
			MatchedCriteria:   []string{"industry_signal"},
			UnmatchedCriteria: []string{"target_role"},
		},
		Signal: SignalClassification{
			IsSignal:    true,
			Confidence:  0.85,
			Category:    CategoryTMSLogistics,
			Strength:    StrengthStrong,
			BuyingStage: StageEvaluation,
			Reasoning:   "explicit RFP language",
		},
		Raw: RawContent{Body: "We are issuing an RFP for a new TMS"},
		Pipeline: Provenance{
			CollectedAt:     time.Now().UTC(),
			ProcessedAt:     time.Now().UTC(),
			PipelineVersion: "1.0.0",
		},
	}
}

func TestValidate_WellFormed(t *testing.T) {
	e := validEvent()
	assert.NoError(t, e.Validate())
}

func TestValidate_ConfidenceOutOfRange(t *testing.T) {
	e := validEvent()
	e.Signal.Confidence = 1.5
	assert.Error(t, e.Validate())

	e.Signal.Confidence = -0.1
	assert.Error(t, e.Validate())
}

func TestValidate_RejectsBadEnums(t *testing.T) {
	e := validEvent()
	e.Signal.Category = "mainframe_upgrades"
	assert.Error(t, e.Validate())

	e = validEvent()
	e.Signal.Strength = "overwhelming"
	assert.Error(t, e.Validate())

	e = validEvent()
	e.Signal.BuyingStage = "regret"
	assert.Error(t, e.Validate())

	e = validEvent()
	e.Source.Platform = "telegraph"
	assert.Error(t, e.Validate())
}

func TestValidate_RejectsBadURL(t *testing.T) {
	e := validEvent()
	e.Source.URL = "not a url"
	assert.Error(t, e.Validate())
}

func TestStageRank_Order(t *testing.T) {
	assert.Equal(t, 0, StageRank(StageAwareness))
	assert.Equal(t, 2, StageRank(StageEvaluation))
	assert.Equal(t, 4, StageRank(StageImplementation))
	assert.Equal(t, -1, StageRank("unknown"))

	assert.Less(t, StageRank(StageResearch), StageRank(StageDecision))
}

func TestText_LowercasesTitleAndBody(t *testing.T) {
	e := RawEvent{Title: "New TMS", Body: "Evaluating Vendors"}
	assert.Equal(t, "new tms evaluating vendors", e.Text())

	e = RawEvent{Body: "Body Only"}
	assert.Equal(t, "body only", e.Text())
}
