package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/chainforge/minichain/foundation/blockchain/database"
)

func noEv(v string, args ...any) {}

func Test_MineAndVerify(t *testing.T) {
	type table struct {
		name       string
		difficulty uint32
	}

	tt := []table{
		{name: "difficulty0", difficulty: 0},
		{name: "difficulty1", difficulty: 1},
		{name: "difficulty2", difficulty: 2},
	}

	t.Log("Given the need to mine a block to a difficulty.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen mining at difficulty %d.", testID, tst.difficulty)
			{
				f := func(t *testing.T) {
					tx, err := database.NewTx("alice", "bob", 100)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create a transaction: %v", failed, testID, err)
					}

					block := database.CreateNextBlock([]byte("hello"), []database.Tx{tx}, database.Block{})

					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()

					if err := block.Mine(ctx, tst.difficulty, noEv); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

					if !database.MeetsDifficulty(block.BlockHash, tst.difficulty) {
						t.Fatalf("\t%s\tTest %d:\tShould produce a hash meeting the difficulty.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould produce a hash meeting the difficulty.", success, testID)

					if !block.Verify(tst.difficulty) {
						t.Fatalf("\t%s\tTest %d:\tShould verify the mined block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould verify the mined block.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_VerifyRejectsTampering(t *testing.T) {
	t.Log("Given the need to detect a tampered block.")
	{
		tx, err := database.NewTx("alice", "bob", 100)
		if err != nil {
			t.Fatalf("\t%s\tTest 0:\tShould be able to create a transaction: %v", failed, err)
		}

		block := database.CreateNextBlock([]byte("hello"), []database.Tx{tx}, database.Block{})

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := block.Mine(ctx, 1, noEv); err != nil {
			t.Fatalf("\t%s\tTest 0:\tShould be able to mine the block: %v", failed, err)
		}
		t.Logf("\t%s\tTest 0:\tShould be able to mine the block.", success)

		t.Log("\tTest 1:\tWhen the data is changed after mining.")
		{
			tampered := block
			tampered.Data = []byte("hellO")
			if tampered.Verify(1) {
				t.Fatalf("\t%s\tTest 1:\tShould fail verification after the data changed.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail verification after the data changed.", success)
		}

		t.Log("\tTest 2:\tWhen a transaction amount is changed after mining.")
		{
			tampered := block
			tampered.Trans = []database.Tx{{Sender: "alice", Receiver: "bob", Amount: 101}}
			if tampered.Verify(1) {
				t.Fatalf("\t%s\tTest 2:\tShould fail verification after the amount changed.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould fail verification after the amount changed.", success)
		}

		t.Log("\tTest 3:\tWhen the stored hash is changed after mining.")
		{
			tampered := block
			tampered.BlockHash[31] ^= 0x01
			if tampered.Verify(1) {
				t.Fatalf("\t%s\tTest 3:\tShould fail verification after the hash changed.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould fail verification after the hash changed.", success)
		}
	}
}

func Test_MeetsDifficulty(t *testing.T) {
	t.Log("Given the need to check hashes against difficulties.")
	{
		t.Log("\tTest 0:\tWhen the difficulty is zero.")
		{
			var hash database.Hash
			hash[0] = 0xff
			if !database.MeetsDifficulty(hash, 0) {
				t.Fatalf("\t%s\tTest 0:\tShould accept any hash at difficulty zero.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould accept any hash at difficulty zero.", success)
		}

		t.Log("\tTest 1:\tWhen the leading bytes are zero.")
		{
			var hash database.Hash
			hash[2] = 0x01
			if !database.MeetsDifficulty(hash, 2) {
				t.Fatalf("\t%s\tTest 1:\tShould accept two leading zero bytes at difficulty two.", failed)
			}
			if database.MeetsDifficulty(hash, 3) {
				t.Fatalf("\t%s\tTest 1:\tShould reject the same hash at difficulty three.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould count leading zero bytes exactly.", success)
		}

		t.Log("\tTest 2:\tWhen the difficulty exceeds the hash size.")
		{
			var zero database.Hash
			if !database.MeetsDifficulty(zero, 1000) {
				t.Fatalf("\t%s\tTest 2:\tShould clamp the difficulty and accept the zero hash.", failed)
			}

			var hash database.Hash
			hash[31] = 0x01
			if database.MeetsDifficulty(hash, 1000) {
				t.Fatalf("\t%s\tTest 2:\tShould clamp the difficulty and reject a non zero hash.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould clamp the difficulty to the hash size.", success)
		}
	}
}

func Test_MineCancellation(t *testing.T) {
	t.Log("Given the need to cancel a mining operation.")
	{
		block := database.CreateNextBlock([]byte("unreachable"), nil, database.Block{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := block.Mine(ctx, database.MaxDifficulty, noEv); err == nil {
			t.Fatalf("\t%s\tTest 0:\tShould return the context error when cancelled.", failed)
		}
		t.Logf("\t%s\tTest 0:\tShould return the context error when cancelled.", success)

		if !block.BlockHash.IsZero() {
			t.Fatalf("\t%s\tTest 0:\tShould leave the hash unset when cancelled.", failed)
		}
		t.Logf("\t%s\tTest 0:\tShould leave the hash unset when cancelled.", success)
	}
}
