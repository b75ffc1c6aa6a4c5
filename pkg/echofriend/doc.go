// Package echofriend implements an interactive voice-based language practice
// session: microphone capture, speech-to-text, a roleplaying chat model,
// text-to-speech, and audio playback, tied together by a sequential turn loop.
//
// # Overview
//
// One conversation turn runs the full pipeline:
//
//	record → transcribe → respond → synthesize → play
//
// The Session owns the conversation transcript (a system entry followed by
// alternating user/assistant entries) and appends to it as stages succeed.
// A failed stage aborts only that turn; the caller decides whether to try
// again. After the loop ends, the Session produces a structured feedback
// report from the learner's utterances.
//
// # Quick Start
//
//	config := echofriend.NewConfig()
//	if issues := config.Validate(); len(issues) > 0 {
//		log.Fatal(issues[0])
//	}
//
//	input := echofriend.NewLineInput(os.Stdin)
//	trigger := echofriend.NewEnterTrigger(input)
//	recorder, err := echofriend.NewRecorder(config, trigger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	session := echofriend.NewSession(config, "Supermarket Shopping",
//		recorder,
//		echofriend.NewPlayer(config),
//		echofriend.NewWhisperClient(config),
//		echofriend.NewChatClient(config),
//		echofriend.NewSpeechClient(config),
//	)
//	defer session.Cleanup()
//
//	result := session.RunTurn(context.Background(), 1)
//	if result.Completed {
//		fmt.Println(result.AssistantText)
//	}
//
// # Configuration
//
// Configuration is read once at startup from the environment (a .env file is
// honored): OPENAI_API_KEY is required, OPENAI_BASE_URL optionally points at
// a compatible gateway, and ECHOFRIEND_* variables tune models, voice,
// language, and audio parameters. See Config.
//
// # Audio
//
// Capture and playback use PortAudio. The capture stream is opened once per
// session and reused across turns; Session.Cleanup releases it exactly once
// no matter how the loop ended. Every artifact is an uncompressed PCM16 WAV
// file named by turn number under the audio directory.
package echofriend
