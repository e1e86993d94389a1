package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-platform/internal/intake"
)

// summaryFieldOrder is the order fields appear in the email body, matching
// the order they are collected on the call.
var summaryFieldOrder = []intake.Field{
	intake.FieldName,
	intake.FieldDOB,
	intake.FieldPhone,
	intake.FieldReason,
	intake.FieldPatientType,
	intake.FieldProvider,
	intake.FieldInsurance,
	intake.FieldMedicaidID,
	intake.FieldMemberID,
	intake.FieldGroupID,
	intake.FieldSubscriberName,
	intake.FieldSubscriberRelationship,
	intake.FieldSubscriberPhone,
	intake.FieldSubscriberDOB,
	intake.FieldSubscriberSex,
}

var summaryFieldLabels = map[intake.Field]string{
	intake.FieldName:                   "Full name",
	intake.FieldDOB:                    "Date of birth",
	intake.FieldPhone:                  "Phone number",
	intake.FieldReason:                 "Reason for call",
	intake.FieldPatientType:            "Patient type",
	intake.FieldProvider:               "Provider",
	intake.FieldInsurance:              "Insurance",
	intake.FieldMedicaidID:             "Medicaid ID",
	intake.FieldMemberID:               "Member ID",
	intake.FieldGroupID:                "Group ID",
	intake.FieldSubscriberName:         "Subscriber name",
	intake.FieldSubscriberRelationship: "Subscriber relationship",
	intake.FieldSubscriberPhone:        "Subscriber phone",
	intake.FieldSubscriberDOB:          "Subscriber date of birth",
	intake.FieldSubscriberSex:          "Subscriber sex",
}

var outcomeDescriptions = map[intake.Outcome]string{
	intake.OutcomeTransferred:       "Caller transferred to staff",
	intake.OutcomeMedicaidRecorded:  "Medicaid intake recorded",
	intake.OutcomeInsuranceRecorded: "Commercial insurance intake recorded",
	intake.OutcomeCompleted:         "Intake completed",
	intake.OutcomeAbandoned:         "Caller hung up before finishing",
}

// BuildIntakeSummary renders a session into an email for clinic staff. The
// transcript is appended when present so staff can review exact wording.
func BuildIntakeSummary(session *intake.Session, transcript []intake.TranscriptEntry) EmailMessage {
	subject := "Intake call summary"
	if name, ok := session.Value(intake.FieldName); ok {
		subject = fmt.Sprintf("Intake call summary: %s", name)
	} else if session.CallerPhone != "" {
		subject = fmt.Sprintf("Intake call summary: %s", session.CallerPhone)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Call SID: %s\n", session.CallID)
	if session.CallerPhone != "" {
		fmt.Fprintf(&b, "Caller: %s\n", session.CallerPhone)
	}
	if !session.StartedAt.IsZero() {
		fmt.Fprintf(&b, "Started: %s\n", session.StartedAt.Format(time.RFC1123))
	}
	if desc, ok := outcomeDescriptions[session.Outcome]; ok {
		fmt.Fprintf(&b, "Outcome: %s\n", desc)
	}
	b.WriteString("\n")

	for _, field := range summaryFieldOrder {
		value, ok := session.Value(field)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", summaryFieldLabels[field], value)
	}

	if len(transcript) > 0 {
		b.WriteString("\nTranscript:\n")
		for _, entry := range transcript {
			fmt.Fprintf(&b, "[%s] %s\n", entry.Role, entry.Text)
		}
	}

	return EmailMessage{
		Subject: subject,
		Body:    b.String(),
	}
}
