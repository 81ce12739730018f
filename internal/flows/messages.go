package flows

import "lobbyctl/pkg/logging"

// Message keys shown by the flows. They double as the English text.
const (
	MsgUnexpectedError         = "Unexpected Error"
	MsgUnexpectedErrorLower    = "Unexpected error"
	MsgAccountExists           = "Your email address is already connected to a Legends Lobby Account."
	MsgIncorrectActivationCode = "The activation code is incorrect. Please enter the activation code that you received in the email."
	MsgEnterEmail              = "Please enter your email address"
	MsgInvalidEmail            = "Please enter a valid email address. E.g. mymail@provider.com"
	MsgEnterLogin              = "Please enter your email address or account name"
	MsgEnterPassword           = "Please enter your password"
	MsgPasswordTooShort        = "Password must be at least {min} characters long"
	MsgPasswordTooLong         = "Password must be at most {max} characters long"
	MsgPasswordsDoNotMatch     = "Passwords do not match"
	MsgAvatarNameLength        = "Please enter your desired avatarname. It has to be between {min} and {max} characters long."
	MsgTaglineLength           = "The tagline has to be between {min} and {max} characters long."
	MsgActivationDigits        = "Please enter all {int} digits of the activation code."
	MsgNoAvatarWithThisName    = "There is no avatar with this name."
	MsgExcludedGameworlds      = "One or more avatars found on a game world excluded by our rules."
	MsgAvatarOnOneGameworld    = "Avatar name found on one game world"
	MsgMultipleAvatars         = "Multiple avatars with that name were found"
	MsgTransferConsumed        = "{amount} was transferred to the avatar {avatar} on the game world {world}."
	MsgTransferPending         = "To complete the transfer of {amount}, the avatar {avatar} has to complete the instructions received via IGM."
	MsgInvitationCodeLength    = "The invitation code is too short. Please enter all {INT} characters."
	MsgMailPermission          = "We could not retrieve your email address from the social provider. Please grant email permission or register with email."
	MsgSocialGeneric           = "An error occurred during social login. Please try again or use email registration."
	MsgRecoverySent            = "If a Lobby Account exists for the provided email address, we have sent you instructions to reset your password to the email:"
)

func logFailure(action string, err error) {
	logging.Warn(subsystem, "Failed to %s: %v", action, err)
}
