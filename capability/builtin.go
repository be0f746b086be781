package capability

import (
	"fmt"
)

// Descriptions compiled into the binary, used when the system database is
// unavailable or incomplete. dumb is deliberately too limited to drive.
var builtinSources = []string{
	`vt100|dec vt100 (w/advanced video),
	am, xenl,
	cols#80, lines#24,
	blink=\E[5m$<2>, bold=\E[1m$<2>, clear=\E[H\E[J$<50>,
	csr=\E[%i%p1%d;%p2%dr, cub=\E[%p1%dD, cub1=^H, cud=\E[%p1%dB,
	cud1=\n, cuf=\E[%p1%dC, cuf1=\E[C$<2>, cup=\E[%i%p1%d;%p2%dH$<5>,
	cuu=\E[%p1%dA, cuu1=\E[A$<2>, ed=\E[J$<50>, el=\E[K$<3>,
	el1=\E[1K$<3>, enacs=\E(B\E)0, home=\E[H, ind=\n, rev=\E[7m$<2>,
	ri=\EM$<5>, rmacs=^O, rmkx=\E[?1l\E>, rmso=\E[m$<2>, rmul=\E[m$<2>,
	sgr0=\E[m\017$<2>, smacs=^N, smkx=\E[?1h\E=, smso=\E[7m$<2>,
	smul=\E[4m$<2>,`,

	`dumb|80-column dumb tty,
	am,
	cols#80,
	cud1=\n, ind=\n,`,

	`ansi-common|shared sequences of ECMA-48 terminals,
	am, xenl,
	cols#80, lines#24,
	blink=\E[5m, bold=\E[1m, civis=\E[?25l, clear=\E[H\E[2J,
	cnorm=\E[?12l\E[?25h, csr=\E[%i%p1%d;%p2%dr, cub=\E[%p1%dD,
	cub1=^H, cud=\E[%p1%dB, cud1=\n, cuf=\E[%p1%dC, cuf1=\E[C,
	cup=\E[%i%p1%d;%p2%dH, cuu=\E[%p1%dA, cuu1=\E[A,
	dch=\E[%p1%dP, dch1=\E[P, dim=\E[2m, dl=\E[%p1%dM, dl1=\E[M,
	ed=\E[J, el=\E[K, el1=\E[1K, home=\E[H, hpa=\E[%i%p1%dG,
	ich=\E[%p1%d@, il=\E[%p1%dL, il1=\E[L, ind=\n, indn=\E[%p1%dS,
	invis=\E[8m, op=\E[39;49m, rev=\E[7m, ri=\EM, rin=\E[%p1%dT,
	rmir=\E[4l, rmkx=\E[?1l\E>, rmso=\E[27m, rmul=\E[24m,
	setab=\E[4%p1%dm, setaf=\E[3%p1%dm, sgr0=\E[m, smir=\E[4h,
	smkx=\E[?1h\E=, smso=\E[7m, smul=\E[4m, vpa=\E[%i%p1%dd,
	kf1=\EOP, kf2=\EOQ, kf3=\EOR, kf4=\EOS, kf5=\E[15~, kf6=\E[17~,
	kf7=\E[18~, kf8=\E[19~, kf9=\E[20~, kf10=\E[21~, kf11=\E[23~,
	kf12=\E[24~,`,

	`linux|linux console,
	bce,
	colors#8,
	civis=\E[?25l\E[?1c, clear=\E[H\E[J, cnorm=\E[?25h\E[?0c, ech=\E[%p1%dX,
	ich1=\E[@, rmacs=\E[10m, sgr0=\E[m\017, smacs=\E[11m,
	use=ansi-common,`,

	`xterm|xterm terminal emulator (X Window System),
	bce, AX, XT,
	colors#8,
	ech=\E[%p1%dX, kmous=\E[<, ritm=\E[23m, rmacs=\E(B,
	rmcup=\E[?1049l\E[23;0;0t, sgr0=\E(B\E[m, sitm=\E[3m, smacs=\E(0,
	smcup=\E[?1049h\E[22;0;0t,
	use=ansi-common,`,

	`xterm-256color|xterm with 256 colors,
	colors#256,
	setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m,
	setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m,
	use=xterm,`,

	`xterm-direct|xterm with direct-color indexing,
	RGB,
	setrgbb=\E[48\:2\:\:%p1%d\:%p2%d\:%p3%dm,
	setrgbf=\E[38\:2\:\:%p1%d\:%p2%d\:%p3%dm,
	use=xterm-256color,`,

	`screen|VT 100/ANSI X3.64 virtual terminal,
	colors#8,
	cnorm=\E[34h\E[?25h, cuu1=\EM, enacs=\E(B\E)0, rmacs=^O, rmso=\E[23m,
	sgr0=\E[m\017, smacs=^N, smso=\E[3m, smcup=\E[?1049h, rmcup=\E[?1049l,
	ich1@, hpa@, vpa@,
	use=ansi-common,`,

	`screen-256color|GNU Screen with 256 colors,
	colors#256,
	setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m,
	setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m,
	use=screen,`,

	`tmux|tmux terminal multiplexer,
	ech=\E[%p1%dX, ritm=\E[23m, rmso=\E[27m, sitm=\E[3m, smso=\E[7m,
	smxx=\E[9m, Smol=\E[53m, Ss=\E[%p1%d q, Se=\E[2 q,
	tsl=\E]0;, fsl=^G,
	use=screen,`,

	`tmux-256color|tmux with 256 colors,
	colors#256,
	setab=\E[%?%p1%{8}%<%t4%p1%d%e%p1%{16}%<%t10%p1%{8}%-%d%e48;5;%p1%d%;m,
	setaf=\E[%?%p1%{8}%<%t3%p1%d%e%p1%{16}%<%t9%p1%{8}%-%d%e38;5;%p1%d%;m,
	use=tmux,`,

	`rxvt-unicode|rxvt-unicode terminal (X Window System),
	bce,
	colors#88,
	dch1@, ech=\E[%p1%dX, rmacs=\E(B, sgr0=\E[m\E(B, smacs=\E(0,
	setab=\E[48;5;%p1%dm, setaf=\E[38;5;%p1%dm, sitm=\E[3m, ritm=\E[23m,
	smcup=\E[?1049h, rmcup=\E[r\E[?1049l,
	use=ansi-common,`,

	`rxvt-unicode-256color|rxvt-unicode terminal with 256 colors,
	colors#256,
	use=rxvt-unicode,`,

	`foot|foot terminal emulator,
	Tc,
	ich1=\E[@, smxx=\E[9m, Smulx=\E[4\:%p1%dm,
	use=xterm-256color,`,

	`mintty|Cygwin terminal,
	Tc,
	smxx=\E[9m, Smol=\E[53m,
	use=xterm-256color,`,

	`iterm2|iTerm2.app,
	Tc,
	smxx=\E[9m,
	use=xterm-256color,`,
}

// Builtin returns the compiled-in descriptions.
func Builtin() Descriptions {
	ds := make(Descriptions, len(builtinSources))
	for _, src := range builtinSources {
		if err := ds.Add(src); err != nil {
			panic(fmt.Sprintf("invalid builtin terminal description: %v", err))
		}
	}
	return ds
}
