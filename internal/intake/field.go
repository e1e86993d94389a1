// Package intake implements the patient-intake dialogue engine: it holds
// per-call session state, resolves caller utterances against the options
// valid for the current step, and decides which prompt (and recognizer
// hints) to play next.
package intake

// Field identifies one piece of information the intake collects.
type Field string

const (
	FieldName                   Field = "name"
	FieldDOB                    Field = "dob"
	FieldPhone                  Field = "phone"
	FieldReason                 Field = "reason"
	FieldPatientType            Field = "patient_type"
	FieldProvider               Field = "provider"
	FieldInsurance              Field = "insurance"
	FieldMedicaidID             Field = "medicaid_id"
	FieldMemberID               Field = "member_id"
	FieldGroupID                Field = "group_id"
	FieldSubscriberName         Field = "subscriber_name"
	FieldSubscriberRelationship Field = "subscriber_relationship"
	FieldSubscriberPhone        Field = "subscriber_phone"
	FieldSubscriberDOB          Field = "subscriber_dob"
	FieldSubscriberSex          Field = "subscriber_sex"
)

// commercialFields is the fixed collection order for the Commercial
// insurance branch. One field is stored per turn.
var commercialFields = []Field{
	FieldMemberID,
	FieldGroupID,
	FieldSubscriberName,
	FieldSubscriberRelationship,
	FieldSubscriberPhone,
	FieldSubscriberDOB,
	FieldSubscriberSex,
}

// Closed-option answer values. Matching resolves utterances to these exact
// strings; they are stored verbatim in the session.
const (
	ReasonSchedule = "Schedule appointment"
	ReasonReferral = "Referral"
	ReasonNurse    = "Speak to a Nurse"

	PatientNew      = "New"
	PatientExisting = "Existing"

	InsuranceMedicaid   = "Medicaid"
	InsuranceCommercial = "Commercial"
)

func reasonOptions() []string {
	return []string{ReasonSchedule, ReasonReferral, ReasonNurse}
}

func patientTypeOptions() []string {
	return []string{PatientNew, PatientExisting}
}

func insuranceOptions() []string {
	return []string{InsuranceMedicaid, InsuranceCommercial}
}
