package orgs

// Channel is a communication surface a chatbot can be deployed to
type Channel string

const (
	ChannelWebsite   Channel = "website"
	ChannelSMS       Channel = "sms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelMessenger Channel = "messenger"
	ChannelIMessage  Channel = "imessage"
	ChannelVoice     Channel = "voice"
)

// Unlimited marks a limit with no cap
const Unlimited = -1

// PlanLimits gates what a plan tier may use. Static, compiled-in
// configuration; changing a tier means shipping a new build.
type PlanLimits struct {
	Chatbots         int       `json:"chatbots"`
	MessagesPerMonth int       `json:"messages_per_month"`
	Channels         []Channel `json:"channels"`
}

// ChannelAllowed reports whether the plan includes a channel
func (l PlanLimits) ChannelAllowed(c Channel) bool {
	for _, allowed := range l.Channels {
		if allowed == c {
			return true
		}
	}
	return false
}

// AllowsChatbots reports whether an org with n existing chatbots may
// create another one.
func (l PlanLimits) AllowsChatbots(n int) bool {
	return l.Chatbots == Unlimited || n < l.Chatbots
}

var planLimits = map[PlanTier]PlanLimits{
	PlanFree: {
		Chatbots:         1,
		MessagesPerMonth: 100,
		Channels:         []Channel{ChannelWebsite},
	},
	PlanStarter: {
		Chatbots:         1,
		MessagesPerMonth: 1000,
		Channels:         []Channel{ChannelWebsite},
	},
	PlanPro: {
		Chatbots:         3,
		MessagesPerMonth: 5000,
		Channels:         []Channel{ChannelWebsite, ChannelSMS, ChannelWhatsApp},
	},
	PlanEnterprise: {
		Chatbots:         Unlimited,
		MessagesPerMonth: Unlimited,
		Channels:         []Channel{ChannelWebsite, ChannelSMS, ChannelWhatsApp, ChannelMessenger},
	},
}

// LimitsFor returns the limits for a plan tier; unknown tiers get the
// FREE limits.
func LimitsFor(plan PlanTier) PlanLimits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[PlanFree]
}
