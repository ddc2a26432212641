// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package track

// Event names of the claim workflow.
const (
	EventPageView                = "page_view"
	EventCheckoutInitiated       = "checkout_initiated"
	EventStepStarted             = "step_started"
	EventStepCompleted           = "step_completed"
	EventToolLaunched            = "tool_launched"
	EventToolCompleted           = "tool_completed"
	EventDocumentUploaded        = "document_uploaded"
	EventDocumentExported        = "document_exported"
	EventClaimSubmitted          = "claim_submitted"
	EventClaimClosed             = "claim_closed"
	EventCarrierResponseReceived = "carrier_response_received"
	EventNegotiationToolUsed     = "negotiation_tool_used"
)

// PageView tracks the current page of the environment.
func (t *Tracker) PageView() {
	env := t.environment()
	t.Track(EventPageView, Properties{
		"page_path":  pagePath(env.PageURL()),
		"page_title": env.PageTitle(),
	})
}

func (t *Tracker) CheckoutInitiated(sourcePage string) {
	t.Track(EventCheckoutInitiated, Properties{
		"source_page": sourcePage,
	})
}

// StepStarted records the start time of a step, even when the tracker is disabled.
// A previous start of the same step is overwritten.
func (t *Tracker) StepStarted(stepNumber int, stepTitle, claimID string) {
	t.startStep(stepNumber)
	t.Track(EventStepStarted, Properties{
		"step_number": stepNumber,
		"step_title":  stepTitle,
		"claim_id":    claimID,
	})
}

// StepCompleted reports the time spent since the step started, 0 if it never started.
// The start time is kept.
func (t *Tracker) StepCompleted(stepNumber int, stepTitle, claimID string) {
	t.Track(EventStepCompleted, Properties{
		"step_number":        stepNumber,
		"step_title":         stepTitle,
		"claim_id":           claimID,
		"time_spent_seconds": t.stepElapsed(stepNumber),
	})
}

func (t *Tracker) ToolLaunched(toolID, toolName string, stepNumber int, claimID string) {
	t.Track(EventToolLaunched, Properties{
		"tool_id":     toolID,
		"tool_name":   toolName,
		"step_number": stepNumber,
		"claim_id":    claimID,
	})
}

func (t *Tracker) ToolCompleted(toolID, toolName string, stepNumber int, claimID, outputType string) {
	t.Track(EventToolCompleted, Properties{
		"tool_id":     toolID,
		"tool_name":   toolName,
		"step_number": stepNumber,
		"claim_id":    claimID,
		"output_type": outputType,
	})
}

func (t *Tracker) DocumentUploaded(documentType string, fileSize int64, stepNumber int, claimID string) {
	t.Track(EventDocumentUploaded, Properties{
		"document_type":   documentType,
		"file_size_bytes": fileSize,
		"step_number":     stepNumber,
		"claim_id":        claimID,
	})
}

func (t *Tracker) DocumentExported(documentType, exportFormat string, stepNumber int, claimID string) {
	t.Track(EventDocumentExported, Properties{
		"document_type": documentType,
		"export_format": exportFormat,
		"step_number":   stepNumber,
		"claim_id":      claimID,
	})
}

func (t *Tracker) ClaimSubmitted(claimID, submissionMethod string) {
	t.Track(EventClaimSubmitted, Properties{
		"claim_id":          claimID,
		"submission_method": submissionMethod,
	})
}

func (t *Tracker) ClaimClosed(claimID, outcome string, settlementAmount float64) {
	t.Track(EventClaimClosed, Properties{
		"claim_id":          claimID,
		"outcome":           outcome,
		"settlement_amount": settlementAmount,
	})
}

func (t *Tracker) CarrierResponseReceived(claimID, responseType string) {
	t.Track(EventCarrierResponseReceived, Properties{
		"claim_id":      claimID,
		"response_type": responseType,
	})
}

func (t *Tracker) NegotiationToolUsed(claimID, toolType string, stepNumber int) {
	t.Track(EventNegotiationToolUsed, Properties{
		"claim_id":    claimID,
		"tool_type":   toolType,
		"step_number": stepNumber,
	})
}
