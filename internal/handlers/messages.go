package handlers

// Reply keyboard labels
const (
	BtnSearchAny    = "🔍 Find a partner"
	BtnSearchFilter = "🎯 Filtered search"
	BtnStop         = "⛔ Stop"
	BtnSkip         = "⏭ Next"
	BtnReport       = "🚩 Report"
	BtnMyGender     = "⚧ My gender"
	BtnStatus       = "📊 Status"
	BtnInvite       = "🎁 Invite friends"
	BtnHelp         = "❓ Help"
)

// Inline button labels
const (
	BtnAnyone    = "🎲 Anyone"
	BtnMale      = "👨 Male"
	BtnFemale    = "👩 Female"
	BtnClear     = "🚫 Prefer not to say"
	BtnRateUp    = "👍"
	BtnRateDown  = "👎"
	BadgeGoodRep = "⭐"
)

const (
	MsgWelcome = `👋 Welcome to the anonymous chat!

Tap <b>%s</b> to meet a random stranger. Your name is never shown in full.`
	MsgWelcomeBack    = "👋 Welcome back! Tap <b>%s</b> to start chatting."
	MsgReferralThanks = "🎁 Someone joined with your invite link! You now have <b>%d</b> referrals."
	MsgSearching      = "🔍 Looking for a partner... You will be notified as soon as someone is found."
	MsgStillSearching = "🔍 You are already in the queue. Hang tight!"
	MsgPaired         = "✅ You are now chatting with <b>%s</b>.\nSay hi! Use ⏭ Next to skip or ⛔ Stop to leave."
	MsgAlreadyPaired  = "💬 You are already in a chat. Use ⏭ Next or ⛔ Stop first."
	MsgNotInChat      = "⚠️ You are not in a chat. Tap 🔍 Find a partner to start."
	MsgStopped        = "⛔ Chat ended."
	MsgSearchCanceled = "🛑 Search canceled."
	MsgNothingToStop  = "ℹ️ Nothing to stop."
	MsgPartnerLeft    = "👋 Your partner has left the chat."
	MsgPartnerSkipped = "⏭ Your partner moved on to someone new."
	MsgChatExpired    = "⌛ The chat was closed due to inactivity."
	MsgReported       = "🚩 Thank you. The user was reported and you will not be matched with them again."
	MsgReportedNotice = "🚩 The chat was ended by your partner."
	MsgRatePrompt     = "How was your chat? Rate your last partner:"
	MsgRated          = "🙏 Thanks for the feedback!"
	MsgNothingToRate  = "You have already rated this chat."
	MsgFilterLocked   = `🔒 Gender filter is locked.

Invite <b>%d</b> friends to unlock it (you have %d). Your invite link:
%s`
	MsgChooseFilter  = "🎯 Who would you like to talk to?"
	MsgChooseGender  = "⚧ Your gender is used only for filtered searches. Current: <b>%s</b>"
	MsgGenderSaved   = "✅ Gender saved: <b>%s</b>"
	MsgInvite        = "🎁 Share this link. Each friend who joins counts as one referral:\n%s"
	MsgNotRegistered = "Please send /start first."
	MsgStatusIdle    = "📊 You are idle.\nReferrals: %d · Karma: %d"
	MsgStatusWaiting = "📊 You are in the queue.\nReferrals: %d · Karma: %d"
	MsgStatusPaired  = "📊 You are in a chat.\nReferrals: %d · Karma: %d"
	MsgIdleNudge     = "👋 It has been a while! New people are waiting to chat. Tap 🔍 Find a partner."
	MsgRateLimited   = "⏳ Slow down a little. Try again in %s."
	MsgUnsupported   = "⚠️ This kind of message cannot be delivered."
	MsgError         = "❌ Something went wrong, please try again."
	MsgAdminOnly     = "❌ Only admins can use this command!"
	MsgNoReports     = "📭 No reports in the selected period."
	MsgHelp          = `❓ <b>How it works</b>

/search - find a random partner
/male, /female - filtered search (unlocked by inviting %d friends)
/next - skip to someone new
/stop - leave the chat or the queue
/report [reason] - report and block your partner
/gender - set your gender
/status - your current state
/invite - your invite link

Chats close after %s without messages.`
	MsgAdminStats = `📊 Bot statistics:

👥 Users:
  • Total: %d
  • Active (24h): %d

💬 Matchmaking:
  • Waiting: %d
  • Active chats: %d

📈 Last 24h:
  • Chats ended: %d
  • Stopped: %d · Skipped: %d · Reported: %d · Expired: %d
  • Reports filed: %d`
)
