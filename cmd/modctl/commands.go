package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-modcontrol/command"
	"github.com/arloliu/go-modcontrol/modcontrol"
)

var outputLimit string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Read the firmware version",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetVersion()
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			printFields("version", resp.Version)

			return nil
		})
	},
}

var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Read the serial number",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetSerial()
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			printFields("serial", resp.Serial)

			return nil
		})
	},
}

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Read and write counters",
}

var counterGetCmd = &cobra.Command{
	Use:   "get <channel>",
	Short: "Read one counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ch, err := parseChannel(args[0])
		if err != nil {
			return err
		}

		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetCounter(ch)
			if err != nil {
				return err
			}

			return printCounter(resp)
		})
	},
}

var counterSetCmd = &cobra.Command{
	Use:   "set <channel> <value>",
	Short: "Write one counter",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ch, err := parseChannel(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return fmt.Errorf("invalid counter value %q", args[1])
		}

		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.SetCounter(ch, uint32(value))
			if err != nil {
				return err
			}

			return printCounter(resp)
		})
	},
}

var counterAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Read every counter",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetAllCounters()
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			fmt.Print(renderCounters(resp))

			return nil
		})
	},
}

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Read and switch outputs",
}

var outputGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Read the state of every output",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetAllOutputs()
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			fmt.Print(renderOutputs(resp))

			return nil
		})
	},
}

var outputSetCmd = &cobra.Command{
	Use:   "set <channel> <on|off>",
	Short: "Switch one output",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		ch, err := parseChannel(args[0])
		if err != nil {
			return err
		}
		on, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		limit, err := parseLimit(outputLimit)
		if err != nil {
			return err
		}

		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.SetOutput(ch, on, limit)
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			printFields("channel", resp.Channel, "on", resp.On, "limit", renderLimit(resp.Limit))

			return nil
		})
	},
}

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Read and modify channel credits",
}

func newCreditsCmd(use, short string, action command.CreditAction) *cobra.Command {
	nargs := 2
	if action == command.CreditGet {
		nargs = 1
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(_ *cobra.Command, args []string) error {
			ch, err := parseChannel(args[0])
			if err != nil {
				return err
			}

			var value uint64
			if nargs == 2 {
				if value, err = strconv.ParseUint(args[1], 0, 16); err != nil {
					return fmt.Errorf("invalid credit value %q", args[1])
				}
			}

			return withDevice(func(dev *modcontrol.Device) error {
				var resp *command.CreditsResponse
				switch action {
				case command.CreditSet:
					resp, err = dev.SetCredits(ch, uint16(value))
				case command.CreditAdd:
					resp, err = dev.AddCredits(ch, uint16(value))
				case command.CreditSubtract:
					resp, err = dev.SubtractCredits(ch, uint16(value))
				default:
					resp, err = dev.GetCredits(ch)
				}
				if err != nil {
					return err
				}
				if err := responseError(&resp.Response); err != nil {
					return err
				}
				printFields("channel", resp.Channel, "action", resp.Action, "credits", resp.Value)

				return nil
			})
		},
	}
}

var cardCmd = &cobra.Command{
	Use:   "card <channel>",
	Short: "Read the ID of the card at a reader channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ch, err := parseChannel(args[0])
		if err != nil {
			return err
		}

		return withDevice(func(dev *modcontrol.Device) error {
			resp, err := dev.GetCardID(ch)
			if err != nil {
				return err
			}
			if err := responseError(&resp.Response); err != nil {
				return err
			}
			printFields("channel", resp.Channel, "card", fmt.Sprintf("%016X", resp.CardID))

			return nil
		})
	},
}

func init() {
	counterCmd.AddCommand(counterGetCmd, counterSetCmd, counterAllCmd)

	outputSetCmd.Flags().StringVarP(&outputLimit, "limit", "l", "", "Load limit in ampere (4-16), or \"disabled\"")
	outputCmd.AddCommand(outputGetCmd, outputSetCmd)

	creditsCmd.AddCommand(
		newCreditsCmd("get <channel>", "Read the credits of a channel", command.CreditGet),
		newCreditsCmd("set <channel> <value>", "Set the credits of a channel", command.CreditSet),
		newCreditsCmd("add <channel> <value>", "Add credits to a channel", command.CreditAdd),
		newCreditsCmd("sub <channel> <value>", "Subtract credits from a channel", command.CreditSubtract),
	)
}

func printCounter(resp *command.CounterResponse) error {
	if err := responseError(&resp.Response); err != nil {
		return err
	}
	printFields("channel", resp.Channel, "value", resp.Value)

	return nil
}

func parseChannel(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid channel %q", s)
	}

	return byte(v), nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid output state %q, want on or off", s)
	}
}

// parseLimit maps the --limit flag to a load limit. An empty value leaves the
// limit unchanged.
func parseLimit(s string) (command.LoadLimit, error) {
	switch strings.ToLower(s) {
	case "":
		return command.DoNotChange, nil
	case "disabled", "none":
		return command.LimitDisabled, nil
	}

	v, err := strconv.Atoi(strings.TrimSuffix(strings.ToUpper(s), "A"))
	if err != nil || v < int(command.LimitTo4Ampere) || v > int(command.LimitTo16Ampere) {
		return 0, fmt.Errorf("invalid load limit %q, want 4-16 or disabled", s)
	}

	return command.LoadLimit(v), nil
}
