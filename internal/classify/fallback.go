package classify

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sells-group/signal-scout/internal/model"
)

//go:embed rules.yaml
var rulesYAML []byte

type stageRule struct {
	Stage   model.BuyingStage `yaml:"stage"`
	Pattern string            `yaml:"pattern"`
}

type ruleTable struct {
	Categories map[model.SignalCategory][]string `yaml:"categories"`
	Stages     []stageRule                       `yaml:"stages"`
}

// fallbackRules holds the compiled rule table. The stage regexes are
// first-match-wins in file order; mutual exclusivity comes from the order,
// not the patterns.
type fallbackRules struct {
	categories map[model.SignalCategory][]string
	stages     []compiledStageRule
}

type compiledStageRule struct {
	stage model.BuyingStage
	re    *regexp.Regexp
}

var rules = mustLoadRules()

func mustLoadRules() fallbackRules {
	var t ruleTable
	if err := yaml.Unmarshal(rulesYAML, &t); err != nil {
		panic(fmt.Sprintf("classify: embedded rules.yaml is invalid: %v", err))
	}

	out := fallbackRules{categories: t.Categories}
	for _, s := range t.Stages {
		out.stages = append(out.stages, compiledStageRule{
			stage: s.Stage,
			re:    regexp.MustCompile("(?i)" + s.Pattern),
		})
	}
	return out
}

// fallbackClassify produces a deterministic rule-based classification. It
// is used on any primary-path failure and is independently testable.
func fallbackClassify(event model.RawEvent) model.SignalClassification {
	text := event.Text()

	bestCategory := model.CategoryGeneralOperations
	bestScore := 0
	var keywords []string

	// Ties keep the earliest category in canonical order. Keywords
	// accumulate across every category, not just the winner.
	for _, category := range model.AllSignalCategories() {
		score := 0
		for _, term := range rules.categories[category] {
			if strings.Contains(text, term) {
				score++
				keywords = append(keywords, term)
			}
		}
		if score > bestScore {
			bestScore = score
			bestCategory = category
		}
	}

	isSignal := bestScore >= 1
	confidence := float64(bestScore) * 0.2
	if confidence > 0.8 {
		confidence = 0.8
	}

	strength := model.StrengthWeak
	switch {
	case bestScore >= 3:
		strength = model.StrengthStrong
	case bestScore >= 2:
		strength = model.StrengthModerate
	}

	var actions []string
	if isSignal {
		actions = []string{"Review content manually", "Research company further"}
	} else {
		actions = []string{}
	}
	if keywords == nil {
		keywords = []string{}
	}

	return model.SignalClassification{
		IsSignal:         isSignal,
		Confidence:       confidence,
		Category:         bestCategory,
		Strength:         strength,
		BuyingStage:      inferBuyingStage(text),
		Reasoning:        fmt.Sprintf("Fallback classification: matched %d keyword(s) in %s", bestScore, bestCategory),
		Keywords:         keywords,
		SuggestedActions: actions,
	}
}

// inferBuyingStage returns the stage of the first matching pattern,
// defaulting to awareness.
func inferBuyingStage(text string) model.BuyingStage {
	for _, s := range rules.stages {
		if s.re.MatchString(text) {
			return s.stage
		}
	}
	return model.StageAwareness
}
