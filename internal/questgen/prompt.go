package questgen

import (
	"strconv"
	"strings"
)

// questPromptTemplate instructs the model to emit the three-line
// Quest/Description/Tags convention the parser depends on.
const questPromptTemplate = `You are an AI networking quest generator for a web3 networking event. Generate fun, interactive networking activities based on the following information:

Event Details:
Name: {eventName}
Description: {eventDescription}
Tags: {eventTags}

User Profile:
Interests: {userInterests}
Meeting Preferences: {meetingPreferences}
Location: {userLocation}

Generate {questCount} interactive networking quests that:
1. Encourage meeting specific types of people (e.g., "Meet a developer working on ZK proofs", "Find someone from Asia who's interested in DeFi")
2. Create natural conversation starters based on shared interests
3. Are specific and easy to verify (e.g., "Take a selfie with 3 people from different continents")
4. Focus on web3 and crypto topics when relevant
5. Include both technical and non-technical interactions
6. Can be completed in 5-15 minutes each
7. Consider the user's location and suggest location-based networking opportunities when relevant
8. Tailor quests to the user's specific interests and background

Format each quest as:
Quest: [Brief, actionable networking task]
Description: [Short explanation or conversation starter]
Tags: [Relevant tags from user interests or event tags]

IMPORTANT: The tags for each quest MUST be selected from the user's interests or event tags. Do not create new tags. Use only tags that appear in either the "Interests" or "Tags" sections above.

Example Quests:
Quest: Meet someone from Northern America working on Layer 2 solutions
Description: Find out which L2 project they're working on and what excites them most about scaling solutions
Tags: L2, scaling, networking

Quest: Find three people who have deployed a smart contract in the last month
Description: Compare experiences about different chains and development tools they used
Tags: development, smart contracts, networking

Keep quests focused on creating meaningful connections and knowledge sharing. Mix both specific (e.g., "Meet a ZK researcher") and general (e.g., "Find someone who attended ETH Denver") tasks.`

// PromptInput carries the per-attendee context rendered into the
// generation prompt.
type PromptInput struct {
	EventName          string
	EventDescription   string
	EventTags          []string
	UserInterests      []string
	MeetingPreferences []string
	UserLocation       string
	QuestCount         int
}

func RenderPrompt(in PromptInput) string {
	location := in.UserLocation
	if location == "" {
		location = "Unknown"
	}

	r := strings.NewReplacer(
		"{eventName}", in.EventName,
		"{eventDescription}", in.EventDescription,
		"{eventTags}", strings.Join(in.EventTags, ", "),
		"{userInterests}", strings.Join(in.UserInterests, ", "),
		"{meetingPreferences}", strings.Join(in.MeetingPreferences, ", "),
		"{userLocation}", location,
		"{questCount}", strconv.Itoa(in.QuestCount),
	)
	return r.Replace(questPromptTemplate)
}
