package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rojolang/echofriend-go/pkg/echofriend"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	scenario   string
	language   string
	deviceID   int
	pickDevice bool
)

var quitKeywords = map[string]bool{"quit": true, "exit": true, "q": true}

func main() {
	rootCmd := &cobra.Command{
		Use:   "echofriend",
		Short: "EchoFriend language practice CLI",
		Long:  "An interactive voice-based language learning assistant: speak, get a reply, and receive feedback at the end of the session",
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(practiceCmd())
	rootCmd.AddCommand(devicesCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		echofriend.GetGlobalLogger().WithError(err).Fatal("CLI execution failed")
	}
}

func practiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Start an interactive practice session",
		Long:  "Record your voice turn by turn, hear the assistant's spoken replies, and get a structured feedback report when you quit",
		Run: func(cmd *cobra.Command, args []string) {
			config := echofriend.NewConfig()
			if verbose {
				config.DebugLevel = "DEBUG"
			}
			echofriend.SetGlobalLogger(echofriend.NewEchoLogger(&echofriend.LogConfig{
				Level:  config.DebugLevel,
				Pretty: true,
				Output: os.Stderr,
			}))

			if language != "" {
				config.Language = language
			}
			if deviceID >= 0 {
				id := deviceID
				config.InputDeviceID = &id
			}

			// Fail fast before any session resources are opened.
			if issues := config.Validate(); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Printf("⚠️  %s\n", issue)
				}
				fmt.Println("\nPlease set the required values in your environment or .env file:")
				fmt.Println("  OPENAI_API_KEY=your-api-key-here")
				fmt.Println("  OPENAI_BASE_URL=your-api-base-url (if using a third-party gateway)")
				os.Exit(1)
			}

			input := echofriend.NewLineInput(os.Stdin)

			if pickDevice && config.InputDeviceID == nil {
				selectMicrophone(config, input)
			}

			trigger := echofriend.NewEnterTrigger(input)
			recorder, err := echofriend.NewRecorder(config, trigger)
			if err != nil {
				echofriend.GetGlobalLogger().WithError(err).Fatal("Failed to open microphone")
			}

			session := echofriend.NewSession(config, scenario,
				recorder,
				echofriend.NewPlayer(config),
				echofriend.NewWhisperClient(config),
				echofriend.NewChatClient(config),
				echofriend.NewSpeechClient(config),
			)
			defer session.Cleanup()

			// Release the audio device on interrupt too; Cleanup is
			// idempotent so the deferred call above stays safe.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\n⚠️  Interrupted, cleaning up...")
				session.Cleanup()
				os.Exit(1)
			}()

			runSession(session, input)
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "Supermarket Shopping", "Roleplay scenario for the session")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Learning language hint for transcription (e.g. nl, de, fr)")
	cmd.Flags().IntVarP(&deviceID, "device", "d", -1, "Input device ID (-1 = default)")
	cmd.Flags().BoolVar(&pickDevice, "pick-device", false, "Interactively choose a microphone before starting")
	return cmd
}

func runSession(session *echofriend.Session, input *echofriend.LineInput) {
	ctx := context.Background()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("🎯 " + session.Welcome())
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("\n💡 Instructions:")
	fmt.Println("   - Press ENTER to start recording, speak, then press ENTER again to stop")
	fmt.Println("   - Type 'quit' and press ENTER to end the conversation")

	turn := 1
	for {
		fmt.Printf("\n%s\nConversation Turn %d\n%s\n", strings.Repeat("=", 60), turn, strings.Repeat("=", 60))
		fmt.Print("\nPress ENTER to continue, or type 'quit' to end: ")

		line, err := input.ReadLine()
		if err != nil {
			fmt.Println("\n👋 Ending conversation...")
			break
		}
		if quitKeywords[strings.ToLower(strings.TrimSpace(line))] {
			fmt.Println("\n👋 Ending conversation...")
			break
		}

		fmt.Println("\n🎤 Press ENTER to START recording... (press ENTER again to STOP)")
		result := session.RunTurn(ctx, turn)

		if result.Completed {
			fmt.Printf("\n📝 You said: \"%s\"\n", result.UserText)
			fmt.Printf("💬 AI responds: \"%s\"\n", result.AssistantText)
			fmt.Printf("\n✅ Turn %d complete!\n", turn)
		} else {
			fmt.Printf("\n❌ Turn %d failed at the %s stage.\n", turn, result.FailedStage)
			fmt.Print("Do you want to try again? (y/n): ")
			answer, err := input.ReadLine()
			if err != nil || strings.ToLower(strings.TrimSpace(answer)) != "y" {
				break
			}
		}

		// A retried turn gets a fresh number so audio artifacts never collide.
		turn++
	}

	printFeedback(session.GenerateFeedback(ctx))
}

func printFeedback(feedback string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📚 Learning Feedback")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(feedback)
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("Thank you for using EchoFriend! Keep practicing! 🎉")
	fmt.Println(strings.Repeat("=", 60))
}

func selectMicrophone(config *echofriend.Config, input *echofriend.LineInput) {
	devices, err := echofriend.ListInputDevices()
	if err != nil {
		fmt.Printf("⚠️  Could not list microphones, using default: %v\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Println("⚠️  No microphones found, using default")
		return
	}

	fmt.Println("\nAvailable microphones:")
	for i, device := range devices {
		marker := ""
		if device.IsDefault {
			marker = " (Default)"
		}
		fmt.Printf("  [%d] %s%s - %d channels\n", i+1, device.Name, marker, device.MaxInputChannels)
	}

	fmt.Printf("\nSelect microphone (1-%d): ", len(devices))
	line, err := input.ReadLine()
	if err != nil {
		return
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(devices) {
		fmt.Println("⚠️  Invalid choice, using default microphone")
		return
	}

	id := devices[choice-1].ID
	config.InputDeviceID = &id
	fmt.Printf("✅ Using microphone device %d\n", id)
}

func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Audio device management",
		Long:  "Commands for listing and testing audio devices",
	}

	cmd.AddCommand(devicesListCmd())
	cmd.AddCommand(devicesTestCmd())

	return cmd
}

func devicesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Long:  "List all available audio input and output devices",
		Run: func(cmd *cobra.Command, args []string) {
			devices, err := echofriend.ListAllDevices()
			if err != nil {
				echofriend.GetGlobalLogger().WithError(err).Error("Failed to list audio devices")
				fmt.Printf("Error listing devices: %v\n", err)
				return
			}

			fmt.Println("Available Audio Devices:")
			for _, device := range devices {
				marker := ""
				if device.IsDefault {
					marker = " (Default)"
				}

				capabilities := ""
				switch {
				case device.IsInput && device.IsOutput:
					capabilities = "Input/Output"
				case device.IsInput:
					capabilities = "Input"
				case device.IsOutput:
					capabilities = "Output"
				}

				fmt.Printf("  %d: %s%s - %s (%.0f Hz)\n",
					device.ID, device.Name, marker, capabilities, device.DefaultSampleRate)
			}
		},
	}

	return cmd
}

func devicesTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test [device-id]",
		Short: "Test a specific audio device",
		Long:  "Validate that a device can serve as a capture source",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := 0
			if len(args) > 0 {
				fmt.Sscanf(args[0], "%d", &id)
			}

			fmt.Printf("Testing audio device ID: %d\n", id)

			dm := echofriend.NewAudioDeviceManager()
			if err := dm.Initialize(); err != nil {
				fmt.Printf("Failed to initialize device manager: %v\n", err)
				return
			}
			defer dm.Cleanup()

			config := echofriend.NewConfig()
			if err := dm.ValidateDevice(id, config.Channels, float64(config.SampleRate)); err != nil {
				fmt.Printf("Device validation failed: %v\n", err)
				return
			}

			info, err := dm.GetDeviceInfo(id)
			if err != nil {
				fmt.Printf("Failed to get device info: %v\n", err)
				return
			}

			fmt.Printf("\nDevice Information:\n%s\n", info)
			fmt.Println("Device test completed successfully!")
		},
	}

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Long:  "Display current configuration settings read from the environment",
		Run: func(cmd *cobra.Command, args []string) {
			config := echofriend.NewConfig()
			config.PrintConfig()

			if issues := config.Validate(); len(issues) > 0 {
				fmt.Println("\nIssues:")
				for _, issue := range issues {
					fmt.Printf("  - %s\n", issue)
				}
			}
		},
	}

	return cmd
}
