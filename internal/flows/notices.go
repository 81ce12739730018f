package flows

// ErrorSocialMessage is the explanation shown for a social error code.
func ErrorSocialMessage(tr Translator, code string) string {
	t := translator{tr}
	if code == SocialMailPermission {
		return t.T(MsgMailPermission, nil)
	}
	return t.T(MsgSocialGeneric, nil)
}

// RegisterWithEmail leaves a social error or invite notice for the
// registration form.
func RegisterWithEmail(nav Navigator) {
	navigate(nav, "#registration")
}

// ReferAFriendChoice is an answer to the refer-a-friend notice.
type ReferAFriendChoice int

const (
	ReferAFriendRegister ReferAFriendChoice = iota
	ReferAFriendLogin
)

// ReferAFriend follows the player's choice on the refer-a-friend notice.
func ReferAFriend(nav Navigator, choice ReferAFriendChoice) {
	if choice == ReferAFriendLogin {
		navigate(nav, "#loginLobby")
		return
	}
	navigate(nav, "#registration")
}
