package echofriend

import "fmt"

// Fixed user-visible strings for the feedback path. Feedback is the one place
// where a failure is surfaced as plain text instead of an error: the
// interactive loop has already ended and there is nothing left to retry.
const (
	feedbackPlaceholder = "No conversation recorded. See you next time!"
	feedbackApology     = "Sorry, could not generate feedback due to an error."

	feedbackTeacherPrompt = "You are an experienced, gentle, and patient language teacher."
)

func systemPrompt(scenario string) string {
	return fmt.Sprintf(`You are a friendly Dutch language learning assistant in a '%s' scenario.

Your role guidelines:
1. **Confirm Understanding**: After the user speaks, naturally paraphrase and confirm what you understood
2. **Keep Conversation Flowing**: Don't correct immediately; demonstrate correct usage through natural dialogue
3. **Scenario Simulation**: Play the role of a relevant character (e.g., shop clerk, waiter)
4. **Encourage Expression**: Create a safe, non-judgmental environment

Example dialogue flow:
- User: "Ik wil... eh... een appel" (may have imperfect grammar)
- You: "Oh, you want an apple, right? We have very fresh apples! Red apples are on the left, green apples on the right. Which kind would you like?"

Important: Don't correct errors now. Just continue the conversation naturally.`, scenario)
}

func feedbackPrompt(conversation, scenario string) string {
	return fmt.Sprintf(`Please analyze the following language learning conversation (scenario: '%s') and provide detailed structured feedback.

Conversation history:
%s

Please provide feedback in the following structure:

1. **Overall Performance Summary**
   - How effective was the communication?
   - Was the scenario task completed successfully?

2. **Language Highlights** (What went well)
   - Correctly used vocabulary or sentence patterns
   - Clear expressions

3. **Improvement Suggestions** (Gentle and constructive)
   - Grammar issues and correct usage
   - Vocabulary choice recommendations
   - Pronunciation tips (if can be inferred from text)

4. **Next Practice Focus**
   - Specific language points to practice
   - Suggested new scenarios to try

5. **Encouragement**
   - Positive feedback on learning progress

Please use a friendly, encouraging tone. The focus is on building learner confidence.`, scenario, conversation)
}

func welcomeMessage(scenario string) string {
	return fmt.Sprintf("Welcome to EchoFriend! Today we'll practice in the '%s' scenario. Feel free to start speaking!", scenario)
}
