package crypto

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// SlothEncode masks a plaintext field element with a key: ciphertext =
// plaintext + key. A single additive round; the inverse is SlothDecode.
func SlothEncode(key, plaintext *fr.Element) fr.Element {
	var ciphertext fr.Element
	ciphertext.Add(plaintext, key)
	return ciphertext
}

// SlothDecode removes the key mask: plaintext = ciphertext - key.
func SlothDecode(key, ciphertext *fr.Element) fr.Element {
	var plaintext fr.Element
	plaintext.Sub(ciphertext, key)
	return plaintext
}
