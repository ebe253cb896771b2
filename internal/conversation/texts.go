package conversation

const (
	promptFriendlyName = "Please enter your friendly name:"
	promptMunicipality = "Please enter your municipality name (example: Novi Beograd)"
	promptStreet       = "Please enter your street name, without the number (example: šumadijska)"

	replyNameTaken       = "This friendly name is already in use. Please start over with /register."
	replyNotRegistered   = "You are not registered."
	replyUnregistered    = "You have been successfully unregistered."
	replyNoInfo          = "You are not currently registered."
	replyRegisterFailed  = "Registration failed, please try again later."
	registeredFmt        = "You have been successfully registered as %s."
	userInfoHeader       = "Here is the information I have on you:\n"
	userInfoFmt          = "Friendly Name: %s\nMunicipality Name: %s\nStreet Name: %s\n\n"
	auditRegisteredFmt   = "User registered:%s, %s, %s"
	auditUnregisteredFmt = "User unregistered:%s, %s, %s"
)
