package keeper

import "sessionclicker/x/clicker/types"

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, types.ErrArithmeticOverflow.Wrapf("%s overflows uint64", field)
	}
	return a + b, nil
}
