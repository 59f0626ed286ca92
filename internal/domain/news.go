package domain

import (
	"errors"
	"time"
)

// Tier is the subscription level of a rule's owner. It gates how much
// content is handed to the analyzer.
type Tier string

const (
	TierFree Tier = "free"
	TierPlus Tier = "plus"
	TierPro  Tier = "pro"
)

// ParseTier maps a raw plan string to a known tier, defaulting to free.
func ParseTier(raw string) Tier {
	switch Tier(raw) {
	case TierPlus:
		return TierPlus
	case TierPro:
		return TierPro
	default:
		return TierFree
	}
}

// Rule is one active tracking rule materialized fresh for a run.
// Keywords are normalized to lowercase and never empty.
type Rule struct {
	Keywords  []string
	Reason    string
	Recipient string
	Tier      Tier
}

// NewsItem is a single entry from the upstream news feed. URL doubles
// as the deduplication key and must be stable across polls.
type NewsItem struct {
	URL         string
	Title       string
	Text        string
	PublishedAt time.Time
}

// MatchResult pairs an item with one rule it triggered.
type MatchResult struct {
	Item NewsItem
	Rule Rule
}

// ContentMode records which content source actually fed the analyzer.
type ContentMode string

const (
	ModeSummary          ContentMode = "summary"
	ModeFullText         ContentMode = "full_text"
	ModeFullTextFallback ContentMode = "full_text_fallback"
)

// EnrichedContent is the text selected for one match, plus the mode
// and the human-readable analysis label shown in the report.
type EnrichedContent struct {
	Text  string
	Mode  ContentMode
	Label string
}

// PromptContext carries everything the analyzer needs for one match.
type PromptContext struct {
	Label    string
	Reason   string
	Keywords []string
	Title    string
	Content  string
}

// AnalysisResult is the parsed analyzer response.
type AnalysisResult struct {
	Summary    string
	ReportHTML string
}

// Notification is a fully assembled outbound message.
type Notification struct {
	Recipient string
	Subject   string
	HTMLBody  string
}

// RunStats accumulates counters for a single pipeline run.
type RunStats struct {
	ItemsSeen         int
	ItemsNew          int
	NotificationsSent int
	Errors            int
}

// TrackedStock is a filings-digest request row.
type TrackedStock struct {
	ID     int64
	Symbol string
}

// StockStatus enumerates filings-digest milestones.
type StockStatus string

const (
	StockPending  StockStatus = "pending"
	StockReview   StockStatus = "review"
	StockNoReport StockStatus = "no_report"
)

// Filing describes one SEC report located for a tracked stock.
type Filing struct {
	FormType  string
	FinalLink string
	FiledAt   time.Time
}

// Collaborator failure taxonomy. Adapters wrap their transport errors
// with these so the pipeline can apply the right propagation policy.
var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrSourceUnavailable = errors.New("news source unavailable")
	ErrFetchFailed       = errors.New("article fetch failed")
	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrMalformedAnalysis = errors.New("malformed analysis response")
	ErrDeliveryFailed    = errors.New("notification delivery failed")
)
