package forecasting

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// MinARIMAMonths is the shortest series ARIMA accepts.
const MinARIMAMonths = 12

// Order is an ARIMA(p, d, q) specification.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

// DefaultOrder is ARIMA(1, 1, 1).
var DefaultOrder = Order{P: 1, D: 1, Q: 1}

func (o Order) String() string {
	return fmt.Sprintf("(%d, %d, %d)", o.P, o.D, o.Q)
}

// Validate rejects negative orders, ARIMA(0, 0, 0) and differencing beyond
// two.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 {
		return fmt.Errorf("invalid ARIMA order %s: components must be non-negative", o)
	}
	if o == (Order{}) {
		return fmt.Errorf("invalid ARIMA order %s: the model has no terms", o)
	}
	if o.D > 2 {
		return fmt.Errorf("invalid ARIMA order %s: differencing above 2 is not supported", o)
	}
	return nil
}

// arima is an ARMA(p, q) model without constant on the d-times differenced
// series, estimated by conditional sum of squares.
type arima struct {
	order Order
	phi   []float64
	theta []float64
	// levels[k] is the series differenced k times.
	levels [][]float64
	// errs are the one-step errors on levels[d], zero before index p.
	errs  []float64
	resid []float64
}

func difference(x []float64) []float64 {
	if len(x) < 2 {
		return nil
	}
	out := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		out[i-1] = x[i] - x[i-1]
	}
	return out
}

// armaErrors computes e_t = w_t - sum(phi_i*w_{t-i}) - sum(theta_j*e_{t-j})
// for t >= p, conditioning on zero errors before p.
func armaErrors(w, phi, theta []float64) []float64 {
	p := len(phi)
	e := make([]float64, len(w))
	for t := p; t < len(w); t++ {
		pred := 0.0
		for i, f := range phi {
			pred += f * w[t-i-1]
		}
		for j, th := range theta {
			if t-j-1 >= 0 {
				pred += th * e[t-j-1]
			}
		}
		e[t] = w[t] - pred
	}
	return e
}

// rootsInsideUnitCircle reports whether every root of
// z^k - c1*z^(k-1) - ... - ck lies strictly inside the unit circle, which
// makes the recursion x_t = c1*x_(t-1) + ... + ck*x_(t-k) stable. The roots
// are the eigenvalues of the companion matrix.
func rootsInsideUnitCircle(c []float64) bool {
	k := len(c)
	switch k {
	case 0:
		return true
	case 1:
		return math.Abs(c[0]) < 1
	}

	companion := mat.NewDense(k, k, nil)
	for j, v := range c {
		companion.Set(0, j, v)
	}
	for i := 1; i < k; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return false
	}
	for _, root := range eig.Values(nil) {
		if cmplx.Abs(root) >= 1 {
			return false
		}
	}
	return true
}

// stationary reports whether the AR part phi is stationary.
func stationary(phi []float64) bool {
	return rootsInsideUnitCircle(phi)
}

// invertible reports whether the MA part theta is invertible. The error
// recursion runs with coefficients -theta.
func invertible(theta []float64) bool {
	neg := make([]float64, len(theta))
	for i, v := range theta {
		neg[i] = -v
	}
	return rootsInsideUnitCircle(neg)
}

// lag1Autocorrelation of x, zero when x has no variance.
func lag1Autocorrelation(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	var num, den float64
	for i, v := range x {
		den += (v - mean) * (v - mean)
		if i > 0 {
			num += (v - mean) * (x[i-1] - mean)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func fitARIMA(ctx context.Context, values []float64, order Order, s fitSettings) (*arima, error) {
	levels := [][]float64{values}
	for k := 0; k < order.D; k++ {
		levels = append(levels, difference(levels[k]))
	}
	w := levels[order.D]
	if len(w) <= order.P+order.Q {
		return nil, fmt.Errorf("%d differenced observations cannot identify ARIMA%s", len(w), order)
	}

	scale := scaleOf(w)
	ws := make([]float64, len(w))
	for i, v := range w {
		ws[i] = v / scale
	}

	split := func(x []float64) ([]float64, []float64) {
		return x[:order.P], x[order.P:]
	}
	css := func(x []float64) float64 {
		phi, theta := split(x)
		if !stationary(phi) || !invertible(theta) {
			return math.Inf(1)
		}
		var sum float64
		for _, e := range armaErrors(ws, phi, theta)[order.P:] {
			sum += e * e
		}
		if !allFinite(sum) {
			return math.Inf(1)
		}
		return sum
	}

	x0 := make([]float64, order.P+order.Q)
	if order.P > 0 {
		x0[0] = math.Max(-0.9, math.Min(0.9, lag1Autocorrelation(ws)))
	}

	var x []float64
	if len(x0) > 0 {
		var err error
		if x, _, err = minimize(ctx, css, x0, s); err != nil {
			return nil, err
		}
	}

	phi, theta := split(append(make([]float64, 0, len(x0)), x...))
	errs := armaErrors(w, phi, theta)
	m := &arima{
		order:  order,
		phi:    phi,
		theta:  theta,
		levels: levels,
		errs:   errs,
		resid:  errs[order.P:],
	}
	if !allFinite(m.resid...) {
		return nil, errNonFinite
	}
	return m, nil
}

func (m *arima) forecast(h int) []float64 {
	w := append([]float64(nil), m.levels[m.order.D]...)
	e := append([]float64(nil), m.errs...)
	n := len(w)
	for i := 0; i < h; i++ {
		t := n + i
		pred := 0.0
		for k, f := range m.phi {
			pred += f * w[t-k-1]
		}
		for j, th := range m.theta {
			if t-j-1 >= 0 {
				pred += th * e[t-j-1]
			}
		}
		w = append(w, pred)
		e = append(e, 0)
	}
	out := w[n:]

	// undo differencing one level at a time
	for k := m.order.D - 1; k >= 0; k-- {
		last := m.levels[k][len(m.levels[k])-1]
		integrated := make([]float64, h)
		for i, v := range out {
			last += v
			integrated[i] = last
		}
		out = integrated
	}
	return out
}

func (m *arima) residuals() []float64 { return m.resid }

func (m *arima) parameters() map[string]any {
	return map[string]any{
		"order": []int{m.order.P, m.order.D, m.order.Q},
		"p":     fmt.Sprintf("%d (past values used)", m.order.P),
		"d":     fmt.Sprintf("%d (trend removal)", m.order.D),
		"q":     fmt.Sprintf("%d (error correction)", m.order.Q),
		"ar":    m.phi,
		"ma":    m.theta,
	}
}
