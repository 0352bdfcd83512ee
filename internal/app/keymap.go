package app

// Key binding constants used in handleKey.
const (
	KeyQuit          = "q"
	KeyCtrlC         = "ctrl+c"
	KeyOpen          = "o"
	KeyRename        = "r"
	KeyReset         = "x"
	KeyProfile       = "p"
	KeyNext          = "j"
	KeyPrev          = "k"
	KeyDown          = "down"
	KeyUp            = "up"
	KeyEnter         = "enter"
	KeyEsc           = "esc"
	KeyLogin         = "l"
	KeyLogout        = "l"
	KeyDarkMode      = "d"
	KeyNotifications = "n"
	KeyUpgrade       = "u"
	KeyDeleteAccount = "X"
)
