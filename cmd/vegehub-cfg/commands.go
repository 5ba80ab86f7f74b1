package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/vegehub/internal/config"
	"github.com/muurk/vegehub/internal/discovery"
	"github.com/muurk/vegehub/internal/hub"
	"github.com/muurk/vegehub/internal/wizard/tui"
)

// Configuration command flags
var (
	deviceIP     string
	scanTimeout  int
	outputFormat string
	retries      int
	apiKeyFlag   string
	verifyFlag   bool
	durationFlag int
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceIP, "device", "", "Hub IP address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 2, "Extra request attempts after the first")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(actuatorsCmd)
	rootCmd.AddCommand(actuatorSetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(wizardCmd)
}

// scanCmd discovers hubs on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for VegeHub devices on the network",
	Long: `Scan for VegeHub devices using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from VegeHub devices and displays
all discovered hubs with their IP addresses and metadata.`,
	Example: `  # Scan for 5 seconds (default)
  vegehub-cfg scan

  # Longer scan for slower networks
  vegehub-cfg scan --timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for VegeHub devices (timeout: %ds)...\n\n", scanTimeout)

	hubs, err := discovery.ScanForHubs(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(hubs) == 0 {
		fmt.Println("No hubs found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the hub is powered on and awake (battery hubs sleep between updates)")
		fmt.Println("  - Verify your computer is on the same network segment as the hub")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device flag to specify IP manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d hub(s):\n\n", len(hubs))

	registry, regErr := config.LoadRegistry()

	for i, h := range hubs {
		fmt.Printf("%d. %s\n", i+1, h.ServiceName)
		fmt.Printf("   IP:       %s:%d\n", h.IP, h.Port)
		if h.Hostname != "" {
			fmt.Printf("   Hostname: %s\n", h.Hostname)
		}
		if len(h.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", h.Metadata)
		}
		if regErr == nil {
			if mac := h.GetMetadata("mac"); mac != "" {
				if meta := registry.GetHub(hub.NormalizeMAC(mac)); meta != nil && meta.Nickname != "" {
					fmt.Printf("   Nickname: %s\n", meta.Nickname)
				}
			}
		}
		fmt.Println()
	}

	fmt.Println("Use 'vegehub-cfg info --device <ip>' to view hub details")
	fmt.Println("Use 'vegehub-cfg setup' to point a hub at your server")

	return nil
}

// infoCmd displays the device identity snapshot
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show hub device information",
	Long: `Display the identity and capability snapshot of a VegeHub device:
firmware version, sensor and actuator counts, power source, and battery
voltage.`,
	Example: `  # Show info with auto-discovery
  vegehub-cfg info

  # Show info for a specific hub
  vegehub-cfg info --device 192.168.0.100`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	info, err := h.FetchInfo(cmd.Context(), retries)
	if err != nil {
		return fmt.Errorf("failed to fetch device info: %w", err)
	}
	if info == nil {
		return fmt.Errorf("hub at %s answered without a device info section", h.IPAddress())
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	power := "battery"
	if info.IsAC {
		power = "AC"
	}
	fmt.Printf("Hub at %s\n", h.IPAddress())
	if h.MACAddress() != "" {
		fmt.Printf("  MAC:       %s\n", h.MACAddress())
	}
	fmt.Printf("  Firmware:  %s\n", info.Version)
	fmt.Printf("  Sensors:   %d\n", info.NumSensors)
	fmt.Printf("  Actuators: %d\n", info.NumActuators)
	fmt.Printf("  Power:     %s\n", power)
	if !info.IsAC {
		fmt.Printf("  Battery:   %.2f V\n", info.BattV)
	}

	return nil
}

// showCmd displays the raw device configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show hub configuration",
	Long: `Display the current configuration of a VegeHub device.

This command reads the device configuration, reports which schema the
firmware speaks (legacy hub/api_key or modern endpoints), and prints the
configuration contents.`,
	Example: `  # Show config for a specific hub
  vegehub-cfg show --device 192.168.0.100

  # JSON output for scripting
  vegehub-cfg show --device 192.168.0.100 --format json`,
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	fmt.Printf("Fetching configuration from %s...\n\n", h.IPAddress())

	cfg, err := h.Config(cmd.Context(), retries)
	if err != nil {
		return fmt.Errorf("failed to get configuration: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(cfg.Raw(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Schema: %s\n\n", cfg.Schema)
	switch cfg.Schema {
	case hub.SchemaLegacy:
		if cfg.Legacy.HasAPIKey {
			fmt.Printf("API key:    %s\n", cfg.Legacy.APIKey)
		}
		if url, ok := cfg.Legacy.Hub["server_url"].(string); ok {
			fmt.Printf("Server URL: %s\n", url)
		}
		if st, ok := cfg.Legacy.Hub["server_type"]; ok {
			fmt.Printf("Server type: %v\n", st)
		}
	case hub.SchemaModern:
		if len(cfg.Endpoints) == 0 {
			fmt.Println("No endpoints configured.")
		}
		for _, ep := range cfg.Endpoints {
			state := "disabled"
			if ep.Enabled {
				state = "enabled"
			}
			fmt.Printf("Endpoint %d: %s (%s, %s)\n", ep.ID, ep.Name, ep.Type, state)
			if url, ok := ep.Config["url"].(string); ok {
				fmt.Printf("  URL: %s\n", url)
			}
		}
	}

	return nil
}

// setupCmd points the hub at an update server
var setupCmd = &cobra.Command{
	Use:   "setup <server-address>",
	Short: "Point a hub at an update server",
	Long: `Configure a hub to push sensor updates to the given server address.

The command reads the hub's current configuration, patches the server
address and API key for whichever schema the firmware speaks, and writes
the result back. The API key is prompted interactively unless --api-key
is given.`,
	Example: `  # Interactive API key prompt
  vegehub-cfg setup http://192.168.1.50:8123 --device 192.168.0.100

  # Non-interactive
  vegehub-cfg setup http://192.168.1.50:8123 --device 192.168.0.100 --api-key mykey`,
	Args: cobra.ExactArgs(1),
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key to write to the hub (prompted if omitted)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	serverAddr := args[0]

	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	apiKey := apiKeyFlag
	if apiKey == "" {
		apiKey, err = promptAPIKey()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Configuring hub %s to report to %s...\n", h.IPAddress(), serverAddr)

	ok, err := h.Setup(cmd.Context(), apiKey, serverAddr, retries)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("hub rejected the configuration write")
	}

	fmt.Println("✓ Hub configured successfully")

	if info := h.Info(); info != nil {
		fmt.Printf("  Firmware:  %s\n", info.Version)
		fmt.Printf("  Sensors:   %d\n", info.NumSensors)
		fmt.Printf("  Actuators: %d\n", info.NumActuators)
	}

	// Remember the hub in the local registry.
	if mac := h.MACAddress(); mac != "" {
		if registry, err := config.LoadRegistry(); err == nil {
			registry.UpdateHubLastSeen(mac, h.IPAddress())
			if err := registry.Save(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to save hub registry: %v\n", err)
			}
		}
	}

	return nil
}

// promptAPIKey reads the API key without echoing it to the terminal.
func promptAPIKey() (string, error) {
	fmt.Print("API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("API key must not be empty")
	}
	return string(key), nil
}

// actuatorsCmd shows the state of every actuator slot
var actuatorsCmd = &cobra.Command{
	Use:   "actuators",
	Short: "Show actuator states",
	Long:  `Read and display the current state of every actuator slot on the hub.`,
	Example: `  vegehub-cfg actuators --device 192.168.0.100
  vegehub-cfg actuators --device 192.168.0.100 --format json`,
	RunE: runActuators,
}

func runActuators(cmd *cobra.Command, args []string) error {
	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	states, err := h.ActuatorStates(cmd.Context(), retries)
	if err != nil {
		return fmt.Errorf("failed to read actuator states: %w", err)
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(states, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(states) == 0 {
		fmt.Println("Hub reported no actuators.")
		return nil
	}

	// Best-effort label lookup from the local registry.
	var meta *config.Hub
	if ok, err := h.RetrieveMAC(cmd.Context(), retries); err == nil && ok {
		if registry, err := config.LoadRegistry(); err == nil {
			meta = registry.GetHub(h.MACAddress())
		}
	}

	for _, st := range states {
		state := "off"
		if st.On() {
			state = "on"
		}
		name := fmt.Sprintf("Slot %d", st.Slot)
		if meta != nil {
			if am := meta.Actuators[st.Slot]; am != nil && am.Label != "" {
				name = fmt.Sprintf("Slot %d (%s)", st.Slot, am.Label)
			}
		}
		fmt.Printf("%s: %s", name, state)
		if st.CurMA > 0 {
			fmt.Printf(" (%d mA)", st.CurMA)
		}
		if st.Error != 0 {
			fmt.Printf(" [error %d]", st.Error)
		}
		fmt.Println()
	}

	return nil
}

// actuatorSetCmd commands one actuator slot
var actuatorSetCmd = &cobra.Command{
	Use:   "actuator-set <slot> <state>",
	Short: "Command an actuator slot",
	Long: `Switch one actuator slot on (1) or off (0).

With --duration the hub switches the slot back off after the given number
of seconds; 0 means indefinite. With --verify the command is followed by
state read-backs confirming the transition took effect.`,
	Example: `  # Switch slot 0 on indefinitely
  vegehub-cfg actuator-set 0 1 --device 192.168.0.100

  # Switch slot 0 on for 5 seconds and verify
  vegehub-cfg actuator-set 0 1 --duration 5 --verify --device 192.168.0.100`,
	Args: cobra.ExactArgs(2),
	RunE: runActuatorSet,
}

func init() {
	actuatorSetCmd.Flags().IntVar(&durationFlag, "duration", 0, "On-time in seconds (0 = indefinite)")
	actuatorSetCmd.Flags().BoolVar(&verifyFlag, "verify", false, "Read back the state after the command")
}

func runActuatorSet(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 0 {
		return fmt.Errorf("invalid slot %q: must be a non-negative integer", args[0])
	}
	state, err := strconv.Atoi(args[1])
	if err != nil || (state != 0 && state != 1) {
		return fmt.Errorf("invalid state %q: must be 0 or 1", args[1])
	}

	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	fmt.Printf("Setting actuator slot %d to %d on %s...\n", slot, state, h.IPAddress())

	if verifyFlag {
		result, err := h.SetActuatorVerified(cmd.Context(), slot, state, durationFlag, retries, nil)
		if err != nil {
			return fmt.Errorf("actuator command failed: %w", err)
		}
		if !result.Success {
			return fmt.Errorf("verification failed: %s", result.Mismatch)
		}
		fmt.Printf("✓ Actuator state verified after %d check(s)\n", result.Checks)
		return nil
	}

	ok, err := h.SetActuator(cmd.Context(), slot, state, durationFlag, retries)
	if err != nil {
		return fmt.Errorf("actuator command failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("hub rejected the actuator command")
	}
	fmt.Println("✓ Actuator command accepted (not verified)")
	return nil
}

// updateCmd asks the hub to push a sensor update immediately
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Request an immediate sensor update",
	Long: `Ask the hub to push a sensor update report to its configured server
right away instead of waiting for the next scheduled report.`,
	Example: `  vegehub-cfg update --device 192.168.0.100`,
	RunE:    runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	h, err := connectHub(cmd.Context())
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.RequestUpdate(cmd.Context(), retries); err != nil {
		return fmt.Errorf("update request failed: %w", err)
	}
	fmt.Printf("✓ Hub %s will push an update to its configured server\n", h.IPAddress())
	return nil
}

// wizardCmd launches the interactive TUI wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive setup wizard",
	Long: `Launch an interactive TUI wizard for hub setup.

The wizard provides a user-friendly interface for:
- Discovering hubs on the network
- Entering the update server address and API key
- Applying and confirming the configuration

This is the recommended way to configure hubs for most users.`,
	Example: `  # Launch wizard with auto-discovery
  vegehub-cfg wizard
  # Or simply (wizard is default):
  vegehub-cfg

  # Launch wizard for a specific hub
  vegehub-cfg wizard --device 192.168.0.100
  vegehub-cfg --device 192.168.0.100`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	var model tea.Model

	if deviceIP != "" {
		// Direct to setup with a manual IP; verify we can reach the hub first.
		h := hub.New(deviceIP)
		_, err := h.FetchInfo(cmd.Context(), retries)
		h.Close()
		if err != nil {
			return fmt.Errorf("failed to connect to hub at %s: %w", deviceIP, err)
		}

		manual := &discovery.Hub{
			IP:          deviceIP,
			Port:        discovery.DefaultPort,
			ServiceName: deviceIP,
		}
		model = tui.NewAppModel(tui.ScreenSetup, manual)
	} else {
		// Start with discovery screen (will auto-scan)
		model = tui.NewAppModel(tui.ScreenDiscovery, nil)
	}

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	return nil
}

// connectHub builds a device handle from the --device flag or discovery.
func connectHub(ctx context.Context) (*hub.Hub, error) {
	if deviceIP != "" {
		return hub.New(deviceIP), nil
	}

	fmt.Println("No device IP specified, attempting auto-discovery...")
	scanner := discovery.NewScanner()
	hubs, err := scanner.ScanForHubsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	if len(hubs) == 0 {
		return nil, fmt.Errorf("no hubs found. Use --device flag to specify IP manually")
	}

	if len(hubs) > 1 {
		fmt.Printf("Found %d hubs:\n", len(hubs))
		for i, h := range hubs {
			fmt.Printf("%d. %s (%s)\n", i+1, h.ServiceName, h.IP)
		}
		return nil, fmt.Errorf("multiple hubs found. Use --device flag to specify which one")
	}

	// Exactly one hub found
	found := hubs[0]
	fmt.Printf("Found hub: %s (%s)\n\n", found.ServiceName, found.IP)
	return hub.New(found.IP), nil
}
