package permission

// Permission is a single VK access-right flag.
type Permission uint64

// VK access rights. The gaps (bits 9, 14, 21, 24 and 25) are reserved by VK
// and are only reachable through [All].
const (
	Notify        Permission = 1 << 0
	Friends       Permission = 1 << 1
	Photos        Permission = 1 << 2
	Audio         Permission = 1 << 3
	Video         Permission = 1 << 4
	Offers        Permission = 1 << 5
	Questions     Permission = 1 << 6
	Pages         Permission = 1 << 7
	Menu          Permission = 1 << 8
	Status        Permission = 1 << 10
	Notes         Permission = 1 << 11
	Messages      Permission = 1 << 12
	Wall          Permission = 1 << 13
	Ads           Permission = 1 << 15
	Offline       Permission = 1 << 16
	Docs          Permission = 1 << 17
	Groups        Permission = 1 << 18
	Notifications Permission = 1 << 19
	Stats         Permission = 1 << 20
	Email         Permission = 1 << 22
	AdsCabinet    Permission = 1 << 23
	Exchange      Permission = 1 << 26
	Market        Permission = 1 << 27
)

// Entry is one row of a permission table.
type Entry struct {
	Name string
	Bit  int
}

var vkTable = []Entry{
	{Name: "NOTIFY", Bit: 0},
	{Name: "FRIENDS", Bit: 1},
	{Name: "PHOTOS", Bit: 2},
	{Name: "AUDIO", Bit: 3},
	{Name: "VIDEO", Bit: 4},
	{Name: "OFFERS", Bit: 5},
	{Name: "QUESTIONS", Bit: 6},
	{Name: "PAGES", Bit: 7},
	{Name: "MENU", Bit: 8},
	{Name: "STATUS", Bit: 10},
	{Name: "NOTES", Bit: 11},
	{Name: "MESSAGES", Bit: 12},
	{Name: "WALL", Bit: 13},
	{Name: "ADS", Bit: 15},
	{Name: "OFFLINE", Bit: 16},
	{Name: "DOCS", Bit: 17},
	{Name: "GROUPS", Bit: 18},
	{Name: "NOTIFICATIONS", Bit: 19},
	{Name: "STATS", Bit: 20},
	{Name: "EMAIL", Bit: 22},
	{Name: "ADSCABINET", Bit: 23},
	{Name: "EXCHANGE", Bit: 26},
	{Name: "MARKET", Bit: 27},
}

var vkReserved = []int{9, 14, 21, 24, 25}

var defaultRegistry = mustRegistry(vkTable, vkReserved)

// Table returns a copy of the VK permission table.
func Table() []Entry {
	out := make([]Entry, len(vkTable))
	copy(out, vkTable)
	return out
}

// DefaultRegistry returns the frozen registry holding the VK table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// All returns every VK permission bit, reserved bits included.
func All() Mask {
	return defaultRegistry.All()
}

// NewVKRegistry returns an unfrozen copy of the VK table so callers can
// register additional rights before freezing it.
func NewVKRegistry() *Registry {
	r := NewRegistry()
	fill(r, vkTable, vkReserved)
	return r
}

func mustRegistry(entries []Entry, reserved []int) *Registry {
	r := NewRegistry()
	fill(r, entries, reserved)
	r.Freeze()
	return r
}

func fill(r *Registry, entries []Entry, reserved []int) {
	for _, e := range entries {
		if err := r.Register(e.Name, e.Bit); err != nil {
			panic("permission: " + e.Name + ": " + err.Error())
		}
	}
	for _, bit := range reserved {
		if err := r.Reserve(bit); err != nil {
			panic("permission: reserved bit: " + err.Error())
		}
	}
}
