package intake

// Prompt texts spoken to the caller. The transport renders these as speech
// (or plays pre-synthesized audio for them).
const (
	promptName        = "Thank you for calling. What is your full name?"
	promptDOB         = "What is your date of birth?"
	promptPhone       = "What is your phone number?"
	promptReason      = "What is the reason for your call? (Schedule appointment, Referral, Speak to a Nurse)"
	promptPatientType = "Are you a new or existing patient?"

	// Provider prompts are built at runtime from the configured display names.
	promptProviderReask = "Please tell me which provider you'd like to see."

	promptInsurance      = "What type of insurance do you have? Medicaid or Commercial?"
	promptInsuranceReask = "Do you have Medicaid or Commercial insurance?"

	promptMedicaidID             = "Please provide your Medicaid ID."
	promptMemberID               = "What is your insurance member ID?"
	promptGroupID                = "What is your group number?"
	promptSubscriberName         = "What is the subscriber's full name?"
	promptSubscriberRelationship = "What is your relationship to the subscriber?"
	promptSubscriberPhone        = "What is the subscriber's phone number?"
	promptSubscriberDOB          = "What is the subscriber's date of birth?"
	promptSubscriberSex          = "What is the subscriber's sex?"

	promptTransfer      = "Okay, I will transfer you now to the appropriate department for %s. Goodbye."
	promptMedicaidDone  = "Thank you. Your Medicaid information has been recorded. Goodbye."
	promptInsuranceDone = "Thank you. Your insurance details have been recorded. Goodbye."
	promptSaved         = "Thank you. Your information has been saved. Goodbye."
)

// commercialPrompts maps each Commercial-branch field to the question that
// collects it.
var commercialPrompts = map[Field]string{
	FieldMemberID:               promptMemberID,
	FieldGroupID:                promptGroupID,
	FieldSubscriberName:         promptSubscriberName,
	FieldSubscriberRelationship: promptSubscriberRelationship,
	FieldSubscriberPhone:        promptSubscriberPhone,
	FieldSubscriberDOB:          promptSubscriberDOB,
	FieldSubscriberSex:          promptSubscriberSex,
}
