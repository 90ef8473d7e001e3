package routes

// Screen is the logical name of a renderable application view. The router
// operates exclusively on these names; rendering is the registry's problem.
type Screen string

// All application screens are defined here to ensure consistency and prevent typos
const (
	// Pseudo-route shown while session restoration is in flight
	ScreenLoading Screen = "Loading"

	// Auth Screens
	ScreenLanding         Screen = "Landing"
	ScreenSignUp          Screen = "SignUp"
	ScreenLogin           Screen = "Login"
	ScreenOTPVerification Screen = "OTPVerification"

	// Onboarding Screens
	ScreenChooseLocationMethod Screen = "ChooseLocationMethod"
	ScreenLocationInput        Screen = "LocationInput"
	ScreenSearchLocation       Screen = "SearchLocation"
	ScreenLocationConfirm      Screen = "LocationConfirm"
	ScreenRoleSelection        Screen = "RoleSelection"
	ScreenOnboardingComplete   Screen = "OnboardingComplete"

	// Home Screens
	ScreenPerformerHome Screen = "PerformerHome"
	ScreenPosterHome    Screen = "PosterHome"

	// Task Screens
	ScreenTaskDetails Screen = "TaskDetails"
	ScreenPostTask    Screen = "PostTask"
	ScreenMyTasks     Screen = "MyTasks"
	ScreenProfile     Screen = "Profile"
)

var authScreens = map[Screen]struct{}{
	ScreenLanding:         {},
	ScreenSignUp:          {},
	ScreenLogin:           {},
	ScreenOTPVerification: {},
}

var onboardingScreens = map[Screen]struct{}{
	ScreenChooseLocationMethod: {},
	ScreenLocationInput:        {},
	ScreenSearchLocation:       {},
	ScreenLocationConfirm:      {},
	ScreenRoleSelection:        {},
	ScreenOnboardingComplete:   {},
}

var homeScreens = map[Screen]struct{}{
	ScreenPerformerHome: {},
	ScreenPosterHome:    {},
}

// IsAuthScreen reports whether s is one of the pre-authentication screens
// (landing, sign-up, login, OTP verification).
func IsAuthScreen(s Screen) bool {
	_, ok := authScreens[s]
	return ok
}

// IsOnboardingScreen reports whether s belongs to the onboarding flow.
func IsOnboardingScreen(s Screen) bool {
	_, ok := onboardingScreens[s]
	return ok
}

// IsHomeScreen reports whether s is a role home screen.
func IsHomeScreen(s Screen) bool {
	_, ok := homeScreens[s]
	return ok
}

// IsResumable reports whether s may be persisted as the "last route" for
// later restoration. Auth and onboarding screens are not resumable: landing
// in the middle of those flows from a raw URL is undesirable, resumption
// goes through the onboarding step deriver instead.
func IsResumable(s Screen) bool {
	if s == ScreenLoading {
		return false
	}
	return !IsAuthScreen(s) && !IsOnboardingScreen(s)
}
