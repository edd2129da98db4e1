package menu

import (
	"fmt"
	"strings"

	"github.com/m3rciful/satbot/app/catalog"
	"github.com/m3rciful/satbot/core/telegram/format"
)

const (
	WelcomeNew         = "Welcome! Let's get you registered.\n\nPlease enter your full name:"
	AskName            = "Please enter your full name:"
	AskPhone           = "Great! Now send me your phone number (example: +123456789)."
	SharePhone         = "📱 Share my number"
	InvalidPhone       = "❌ Invalid phone number format. Try again (example: +123456789)."
	PhoneOutOfRange    = "❌ This phone number has an unexpected length. Try again (example: +123456789)."
	ForeignContact     = "❌ Please share your own contact or type your number (example: +123456789)."
	AskAge             = "Nice! Now send me your age (just a number)."
	InvalidAge         = "❌ Age must be a number. Try again:"
	AgeOutOfRange      = "❌ This age is outside the accepted range. Try again:"
	SaveFailed         = "⚠️ Error saving your data. Please try again later."
	Cancelled          = "Registration cancelled. Send /start whenever you want to try again."
	NothingToCancel    = "There is nothing to cancel."
	MainMenuPrompt     = "Main menu:"
	ChooseSubject      = "Choose a subject:"
	NoFiles            = "No files are available here yet."
	FileNotFound       = "❌ File not found. Please choose again from the main menu."
	NotFound           = "❌ Not found. Please choose again from the main menu."
	DeliveryFailed     = "⚠️ Could not send the file. Please try again later."
	BackToMenu         = "⬅️ Back to menu"
	StorageUnavailable = "⚠️ Something went wrong. Please try again later."
	AdminOnly          = "This command is for administrators only."

	AskQuestion = "❓ Send your question in this chat, and we'll respond as soon as possible."
	About       = "ℹ️ We help students prepare for the SAT with practice tests and answer keys for Math and English."

	Help = "Hello! I’m here to help you prepare for the SAT. Here’s what you can do:\n\n" +
		"Main Commands:\n\n" +
		"📚 Download Tests – Get SAT practice tests for Math and English.\n\n" +
		"📝 Download Answers – Get answer keys for the available tests.\n\n" +
		"❓ Ask a Question – Send your question, and we’ll respond as soon as possible.\n\n" +
		"ℹ️ About Us – Learn more about our bot and its purpose.\n\n" +
		"How to use:\n\n" +
		"1. Choose a subject (Math or English).\n" +
		"2. Select the test you want to download.\n" +
		"3. Receive the file and practice! ✅\n\n" +
		"Need more help? Just type /start to return to the main menu anytime."
)

// WelcomeBack greets a registered user by name.
func WelcomeBack(fullName string) string {
	return fmt.Sprintf("Welcome back, %s! 👋", Title(fullName))
}

// Completed summarizes a finished registration.
func Completed(fullName, phone string, age int) string {
	return fmt.Sprintf("✅ Registration complete!\n\nName: %s\nPhone: %s\nAge: %d", fullName, phone, age)
}

// AdminNotice is the MarkdownV2 message sent to admins about a new user.
// A negative total omits the user count.
func AdminNotice(fullName string, userID int64, total int) string {
	var b strings.Builder
	b.WriteString(format.MentionV2(Title(fullName), userID))
	b.WriteString(format.EscapeV2(" registered."))
	if total >= 0 {
		b.WriteString("\n")
		b.WriteString(format.EscapeV2(fmt.Sprintf("Now %d users in the database.", total)))
	}
	return b.String()
}

// Stats reports the registered user count.
func Stats(total int) string {
	return fmt.Sprintf("📊 Registered users: %d", total)
}

// FilesHeader introduces a file listing.
func FilesHeader(category catalog.Category, subject catalog.Subject) string {
	return fmt.Sprintf("%s %s – choose a file:", subject.Label(), category.Label())
}

// NoFilesIn reports an empty listing.
func NoFilesIn(category catalog.Category, subject catalog.Subject) string {
	return fmt.Sprintf("%s %s: %s", subject.Label(), category.Label(), NoFiles)
}
